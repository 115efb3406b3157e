// Package file - пакет с функциями для работы с файлами
package file

import (
	"errors"
	"io"
	"os"

	"github.com/Kostushka/http_server/internal/connection/consts"
	"github.com/Kostushka/http_server/internal/log"
)

// Open - открываем файл по пути
func Open(path string) (*os.File, error) {
	// открываем запрашиваемый файл
	f, err := os.Open(path) //nolint:gosec

	if err != nil {
		return nil, err
	}

	return f, nil
}

// Send - отправляем клиенту файл
func Send(w io.Writer, f *os.File) error {
	// читаем файл буфером фиксированного размера:
	// если задать буфер равным размеру файла fileBuf := make([]byte, fileSize),
	// то можем исчерпать оперативную память, если файл имеет большой размер
	// например, RAM - 1 Гб, а файл - 5 Гб; буфер лежит в RAM, выделить на него 5 Гб не получится
	fileBuf := make([]byte, consts.BufSize)

	for {
		n, err := f.Read(fileBuf)
		if n > 0 {
			// записать содержимое буфера в клиентский сокет
			if _, werr := w.Write(fileBuf[:n]); werr != nil {
				return werr
			}
		}
		// читаем файл, пока не встретим EOF
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return err
		}
	}

	log.Infof("клиенту отправлено тело ответа")

	return nil
}
