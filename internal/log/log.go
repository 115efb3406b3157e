// Package log - пакет для записи лога сервера
package log

import (
	"os"

	"github.com/rs/zerolog"
)

var infoLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
var errorLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

const permissions = 0644

// New - создаем логеры
func New(logFile string) error {
	// создаем логеры, пишущие в stdout/stderr
	if logFile == "" {
		infoLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
		errorLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

		return nil
	}
	// создаем файл для записи лога
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permissions)
	if err != nil {
		return err
	}
	// создаем логеры, пишущие в файл
	infoLog = zerolog.New(f).With().Timestamp().Logger()
	errorLog = zerolog.New(f).With().Timestamp().Logger()

	return nil
}

// Infof - пишет информационный лог
func Infof(v ...any) {
	// строка лога без аргументов
	if len(v) == 1 {
		infoLog.Info().Msgf("%v", v[0])

		return
	}
	// строка лога с аргументами
	if r, ok := v[0].(string); ok {
		infoLog.Info().Msgf(r, v[1:]...)

		return
	}

	errorLog.Error().Msg("некорректный формат лога")
}

// Errorf - пишет лог ошибки
func Errorf(v ...any) {
	// строка лога без аргументов
	if len(v) == 1 {
		errorLog.Error().Msgf("%v", v[0])

		return
	}
	// строка лога с аргументами
	if r, ok := v[0].(string); ok {
		errorLog.Error().Msgf(r, v[1:]...)

		return
	}

	errorLog.Error().Msg("некорректный формат лога")
}

// Fatalf - пишет лог ошибки и завершает процесс с ненулевым статусом
func Fatalf(v ...any) {
	// строка лога без аргументов
	if len(v) == 1 {
		errorLog.Fatal().Msgf("%v", v[0])

		return
	}
	// строка лога с аргументами
	if r, ok := v[0].(string); ok {
		errorLog.Fatal().Msgf(r, v[1:]...)

		return
	}

	errorLog.Fatal().Msg("некорректный формат лога")
}
