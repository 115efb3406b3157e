// Package resolve - пакет для сопоставления пути из строки запроса с файлом в корневом каталоге
package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

var (
	// ErrBadPath - некорректный путь запроса
	ErrBadPath = errors.New("некорректный путь запроса")
	// ErrOutsideRoot - путь выходит за пределы корневого каталога
	ErrOutsideRoot = errors.New("путь выходит за пределы корневого каталога")
	// ErrNotFound - файл не найден
	ErrNotFound = errors.New("файл не найден")
	// ErrNotRegular - файл не является обычным файлом
	ErrNotRegular = errors.New("файл не является обычным файлом")
)

// Target - разрешенный путь до файла внутри корневого каталога и информация о файле
type Target struct {
	path string
	info fs.FileInfo
}

// Path - возвращает путь до файла
func (t *Target) Path() string {
	return t.path
}

// Name - возвращает имя файла
func (t *Target) Name() string {
	return t.info.Name()
}

// Size - возвращает размер файла в байтах
func (t *Target) Size() int64 {
	return t.info.Size()
}

// Resolve - сопоставляем декодированный путь из строки запроса с файлом в корневом каталоге;
// rootPath должен быть каноническим - с ним сравнивается итоговый путь
func Resolve(rootPath, queryPath, indexName string) (*Target, error) {
	if queryPath == "" {
		return nil, ErrBadPath
	}

	// путь, оканчивающийся на /, указывает на каталог:
	// для него отдаем файл по умолчанию, если он настроен
	wantIndex := strings.HasSuffix(queryPath, "/")

	// нормализуем сегменты пути
	parts, err := splitQueryPath(queryPath)
	if err != nil {
		return nil, err
	}

	if len(parts) == 0 {
		wantIndex = true
	}

	path := filepath.Join(rootPath, filepath.Join(parts...))

	// итоговый путь обязан лежать в корневом каталоге;
	// проверка префикса выполняется всегда, а не только при наличии подозрительных сегментов
	if path != rootPath && !strings.HasPrefix(path, rootPath+string(os.PathSeparator)) {
		return nil, ErrOutsideRoot
	}

	if wantIndex {
		// файл по умолчанию не настроен - содержимое каталога не отдаем
		if indexName == "" {
			return nil, fmt.Errorf("для каталога %q не настроен файл по умолчанию: %w", path, ErrNotFound)
		}

		path = filepath.Join(path, indexName)
	}

	// файл должен существовать и быть доступным
	fi, err := os.Stat(path)
	if err != nil {
		if notFoundStatError(err) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}

		return nil, err
	}

	// каталоги и специальные файлы не отдаем
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%q: %w", path, ErrNotRegular)
	}

	return &Target{
		path: path,
		info: fi,
	}, nil
}

// ошибки stat, при которых файла по такому пути быть не может:
// файл отсутствует или недоступен, сегмент пути оказался обычным файлом
// (например, /a.txt/b.txt), путь некорректен для файловой системы
func notFoundStatError(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.ENOTDIR) ||
		errors.Is(err, syscall.EINVAL)
}

// разбиваем путь на сегменты: пустые сегменты и . отбрасываем,
// .. поднимает на уровень вверх и не должен выводить за корневой каталог
func splitQueryPath(queryPath string) ([]string, error) {
	segments := strings.Split(queryPath, "/")
	parts := make([]string, 0, len(segments))

	for _, seg := range segments {
		switch seg {
		case "", ".":
			// схлопываем повторные разделители и текущий каталог
		case "..":
			// выход за корневой каталог отклоняем, а не нормализуем
			if len(parts) == 0 {
				return nil, ErrOutsideRoot
			}

			parts = parts[:len(parts)-1]
		default:
			parts = append(parts, seg)
		}
	}

	return parts, nil
}
