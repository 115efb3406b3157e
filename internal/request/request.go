// Package request - пакет для разбора данных запроса, прочитанных из клиентского соединения
package request

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Kostushka/http_server/internal/connection/consts"
)

var (
	// ErrEmptyRequest - клиент закрыл соединение, не отправив данных
	ErrEmptyRequest = errors.New("клиент закрыл соединение, не отправив данных")
	// ErrInvalidRequest - некорректный формат запроса
	ErrInvalidRequest = errors.New("incorrect request format: not HTTP")
	// ErrRequestTooLarge - запрос превышает допустимый размер
	ErrRequestTooLarge = errors.New("запрос превышает допустимый размер")
)

// Method - метод запроса
type Method int

const (
	// MethodGet - метод GET
	MethodGet Method = iota
	// MethodHead - метод HEAD
	MethodHead
	// MethodUnsupported - метод, который сервер не поддерживает
	MethodUnsupported
)

// String - имя метода для лога
func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodHead:
		return "HEAD"
	default:
		return "UNSUPPORTED"
	}
}

// Version - версия протокола из строки запроса
type Version int

const (
	// VersionHTTP10 - HTTP/1.0
	VersionHTTP10 Version = iota
	// VersionHTTP11 - HTTP/1.1
	VersionHTTP11
	// VersionUnknown - версия, которую сервер не распознал
	VersionUnknown
)

// String - имя версии протокола для лога
func (v Version) String() string {
	switch v {
	case VersionHTTP10:
		return "HTTP/1.0"
	case VersionHTTP11:
		return "HTTP/1.1"
	default:
		return "HTTP/?"
	}
}

// ParsedRequest - распарсенные данные запроса
type ParsedRequest struct {
	method  Method
	path    string
	version Version
	headers map[string]string
}

// Method - возвращает метод запроса
func (p *ParsedRequest) Method() Method {
	return p.method
}

// Path - возвращает декодированный путь из строки запроса
func (p *ParsedRequest) Path() string {
	return p.path
}

// Version - возвращает версию протокола
func (p *ParsedRequest) Version() Version {
	return p.version
}

// Header - возвращает значение заголовка запроса или ”
func (p *ParsedRequest) Header(name string) string {
	return p.headers[name]
}

// парсер запроса; считает суммарный объем прочитанного
type parser struct {
	r    *bufio.Reader
	read int
}

// Parse - читаем из клиентского соединения строку запроса и заголовки
func Parse(r *bufio.Reader) (*ParsedRequest, error) {
	p := parser{r: r}

	// читаем строку запроса
	line, err := p.readLine()
	if err != nil {
		// клиент ничего не отправил - отвечать некому
		if errors.Is(err, io.EOF) && p.read == 0 {
			return nil, ErrEmptyRequest
		}

		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("клиент преждевременно закрыл соединение: %w", ErrInvalidRequest)
		}

		return nil, err
	}

	q := ParsedRequest{}

	// парсим строку запроса
	if err := q.parseQueryString(line); err != nil {
		return nil, err
	}

	// читаем заголовки до пустой строки
	headers, err := p.readHeaders()
	if err != nil {
		return nil, err
	}

	q.headers = headers

	return &q, nil
}

// парсим строку запроса: метод, путь, версия протокола
func (p *ParsedRequest) parseQueryString(line string) error {
	// строка запроса может содержать более одного пробела между токенами
	buf := strings.Split(trimQueryStringSpace(strings.Trim(line, " ")), " ")

	// в строке запроса должно быть не меньше двух токенов: метод и путь
	if len(buf) < 2 || buf[0] == "" || buf[1] == "" {
		return fmt.Errorf("не удалось распарсить строку запроса: %w", ErrInvalidRequest)
	}

	// лишние токены - некорректный запрос
	if len(buf) > 3 {
		return fmt.Errorf("не удалось распарсить строку запроса: %w", ErrInvalidRequest)
	}

	// метод либо поддерживается, либо явно помечается неподдерживаемым
	switch buf[0] {
	case "GET":
		p.method = MethodGet
	case "HEAD":
		p.method = MethodHead
	default:
		p.method = MethodUnsupported
	}

	// декодируем path на случай, если он не в латинице
	convertPath, err := url.PathUnescape(buf[1])
	if err != nil || convertPath == "" {
		return fmt.Errorf("не удалось декодировать путь из строки запроса: %w", ErrInvalidRequest)
	}

	p.path = convertPath

	// запрос без версии протокола считаем запросом HTTP/1.0:
	// так вели себя старые клиенты
	if len(buf) == 2 {
		p.version = VersionHTTP10

		return nil
	}

	switch buf[2] {
	case "HTTP/1.0":
		p.version = VersionHTTP10
	case "HTTP/1.1":
		p.version = VersionHTTP11
	default:
		p.version = VersionUnknown
	}

	return nil
}

// читаем заголовки в map; значения заголовков сервером не интерпретируются
func (p *parser) readHeaders() (map[string]string, error) {
	headers := make(map[string]string, 5)

	for {
		line, err := p.readLine()
		if err != nil {
			// клиент закрыл соединение, не дослав заголовки -
			// работаем с тем, что успели прочитать
			if errors.Is(err, io.EOF) {
				return headers, nil
			}

			return nil, err
		}

		// в конце после заголовков ожидаем пустую строку
		if line == "" {
			return headers, nil
		}

		sepIndex := strings.Index(line, ":")
		if sepIndex == -1 {
			return nil, fmt.Errorf("не удалось распарсить заголовки запроса: %w", ErrInvalidRequest)
		}

		headers[line[:sepIndex]] = strings.TrimSpace(line[sepIndex+1:])
	}
}

// читаем строку до \n; в конце строки ожидаем либо \r\n, либо \n
func (p *parser) readLine() (string, error) {
	var line []byte

	for {
		chunk, err := p.r.ReadSlice('\n')

		// учитываем суммарный объем прочитанного, чтобы не дать клиенту
		// занять память сервера бесконечными заголовками
		p.read += len(chunk)
		if p.read > consts.MaxRequestSize {
			return "", ErrRequestTooLarge
		}

		line = append(line, chunk...)

		if err == nil {
			break
		}

		// строка не уместилась в буфер - дочитываем
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		return "", err
	}

	return strings.TrimRight(string(line), "\r\n"), nil
}

// учитываем, что строка запроса может содержать более одного пробела, например:
// GET        /                HTTP/1.1
// удаляем лишние пробелы
func trimQueryStringSpace(str string) string {
	var prev byte
	var i int
	// для эффективного приращения строки используем strings.Builder - по сути срез и append
	var res strings.Builder
	for ; i < len(str); i++ {
		if str[i] == prev && prev == ' ' {
			continue
		}
		prev = str[i]
		res.WriteByte(str[i])
	}
	return res.String()
}
