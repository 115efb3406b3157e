// Package config - пакет для получения конфигурационных данных для запуска сервера
package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrNoRootDir - не указан путь до корневого каталога
	ErrNoRootDir = errors.New("не указан путь до *корневого* каталога")
	// ErrNotDir - корневой каталог не является каталогом
	ErrNotDir = errors.New("указанный путь не является каталогом")
	// ErrInvalidAddr - указан некорректный IP-адрес
	ErrInvalidAddr = errors.New("указан некорректный IP-адрес")
	// ErrInvalidPort - указан некорректный порт
	ErrInvalidPort = errors.New("указан некорректный порт")
	// ErrInvalidWorkers - указано некорректное количество обработчиков
	ErrInvalidWorkers = errors.New("количество обработчиков должно быть не меньше 1")
	// ErrInvalidIndex - указано некорректное имя файла по умолчанию
	ErrInvalidIndex = errors.New("имя файла по умолчанию не должно содержать разделителей пути")
)

const portNumber = 8000

const maxPortNumber = 65535

// Data - данные для конфигурации сервера; после создания не изменяются
type Data struct {
	rootPath      string
	listenAddress net.IP
	port          int
	workers       int
	indexName     string
	log           string
}

// RootPath - возвращает канонический путь до корневого каталога
func (c *Data) RootPath() string {
	return c.rootPath
}

// ListenAddress - возвращает адрес, на котором будет запущен сервер
func (c *Data) ListenAddress() net.IP {
	return c.listenAddress
}

// Port - возвращает порт, на котором сервер будет принимать запросы на соединение
func (c *Data) Port() int {
	return c.port
}

// Workers - возвращает количество обработчиков соединений
func (c *Data) Workers() int {
	return c.workers
}

// IndexName - возвращает имя файла, отдаваемого по запросу каталога, или ”
func (c *Data) IndexName() string {
	return c.indexName
}

// Log - возвращает имя файла для записи лога в него или ”
func (c *Data) Log() string {
	return c.log
}

// New - функция-конструктор для получения структуры с конфигурационными данными;
// проверяет данные и приводит путь до корневого каталога к каноническому виду
func New(rootPath, listenAddress string, port, workers int, indexName, log string) (*Data, error) {
	// должен быть указан путь до домашнего каталога
	if rootPath == "" {
		return nil, ErrNoRootDir
	}

	// путь до корневого каталога должен быть каноническим:
	// с ним сравнивается каждый путь из строки запроса
	rootPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось определить абсолютный путь до корневого каталога: %w", err)
	}

	rootPath, err = filepath.EvalSymlinks(rootPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось привести путь до корневого каталога к каноническому виду: %w", err)
	}

	// корневой каталог должен существовать и быть каталогом
	fi, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("корневой каталог недоступен: %w", err)
	}

	if !fi.IsDir() {
		return nil, ErrNotDir
	}

	// IP адрес должен быть корректным
	var addr net.IP
	if addr = net.ParseIP(listenAddress); addr == nil {
		return nil, ErrInvalidAddr
	}

	// порт 0 допустим: ОС выберет свободный порт
	if port < 0 || port > maxPortNumber {
		return nil, ErrInvalidPort
	}

	// обработчиков должно быть не меньше одного
	if workers < 1 {
		return nil, ErrInvalidWorkers
	}

	// имя файла по умолчанию - одно имя, не путь
	if indexName != filepath.Base(indexName) && indexName != "" {
		return nil, ErrInvalidIndex
	}

	if strings.Contains(indexName, "..") {
		return nil, ErrInvalidIndex
	}

	return &Data{
		rootPath:      rootPath,
		listenAddress: addr,
		port:          port,
		workers:       workers,
		indexName:     indexName,
		log:           log,
	}, nil
}

// NewConfigData - получение структуры с конфигурационными данными из аргументов командной строки
func NewConfigData() (*Data, error) {
	// должен быть указан путь до домашнего каталога
	var rootPath string

	flag.StringVar(&rootPath, "path", "", "a path to home directory")

	// должен быть указан адрес, на котором будет запущен сервер
	var listenAddress string

	flag.StringVar(&listenAddress, "IP", "127.0.0.1", "a listening address")

	// должен быть указан порт, на котором сервер будет принимать запросы на соединение
	var port int

	flag.IntVar(&port, "port", portNumber, "a port")

	// должно быть указано количество обработчиков соединений
	var workers int

	flag.IntVar(&workers, "workers", runtime.NumCPU(), "a number of connection workers")

	// должно быть указано имя файла, отдаваемого по запросу каталога, или пустая строка
	var indexName string

	flag.StringVar(&indexName, "index", "index.html", "a default file name for directory requests")

	// должно быть указано имя файла для записи лога в него, иначе вывод лога будет в stdout
	var log string

	flag.StringVar(&log, "log", "", "output log to file")

	flag.Parse()

	return New(rootPath, listenAddress, port, workers, indexName, log)
}
