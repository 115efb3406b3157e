// Package connection - пакет с функциями, которые работают с клиентским соединением
package connection

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"

	"github.com/Kostushka/http_server/internal/config"
	"github.com/Kostushka/http_server/internal/connection/consts"
	"github.com/Kostushka/http_server/internal/connection/headerdata"
	"github.com/Kostushka/http_server/internal/file"
	"github.com/Kostushka/http_server/internal/log"
	"github.com/Kostushka/http_server/internal/request"
	"github.com/Kostushka/http_server/internal/resolve"
)

// Connection - структура с данными обрабатываемого соединения
type Connection struct {
	conn net.Conn
	cfg  *config.Data
}

// New - создать структуру с данными обрабатываемого соединения
func New(conn net.Conn, cfg *config.Data) *Connection {
	return &Connection{
		conn: conn,
		cfg:  cfg,
	}
}

// ProcessingConn - обрабатываем клиентское соединение:
// один запрос, один ответ, после ответа соединение закрывается
func (c *Connection) ProcessingConn() {
	// закрыть клиентское соединение
	defer Close(c.conn, fmt.Sprintf("клиентское соединение %s закрыто", c.conn.RemoteAddr()))

	log.Infof("начинается работа с клиентским сокетом %s", c.conn.RemoteAddr())

	// распарсить данные запроса
	query, err := request.Parse(bufio.NewReaderSize(c.conn, consts.BufSize))
	if err != nil {
		// клиент закрыл сокет, не отправив данных - не отвечаем
		if errors.Is(err, request.ErrEmptyRequest) {
			return
		}

		log.Errorf(err)

		// некорректный или слишком большой запрос
		if errors.Is(err, request.ErrInvalidRequest) || errors.Is(err, request.ErrRequestTooLarge) {
			c.sendError(consts.StatusBadRequest, false)
		}

		return
	}

	// логируем строку запроса и клиентские заголовки
	log.Infof("\"%v %v %v\" %v %v %q",
		query.Method(), query.Path(), query.Version(), c.conn.RemoteAddr(),
		query.Header("Host"), query.Header("User-Agent"))

	// тело не отправляется для метода HEAD, заголовки - те же, что и для GET
	head := query.Method() == request.MethodHead

	// на запрос с неподдерживаемым методом отвечаем без разрешения пути
	if query.Method() == request.MethodUnsupported {
		c.sendError(consts.StatusMethodNotAllowed, false)

		return
	}

	// сопоставляем путь из строки запроса с файлом в корневом каталоге
	target, err := resolve.Resolve(c.cfg.RootPath(), query.Path(), c.cfg.IndexName())
	if err != nil {
		log.Errorf(err)
		c.sendError(resolveErrorStatus(err), head)

		return
	}

	// открываем запрашиваемый файл
	f, err := c.openFile(target.Path(), head)
	if err != nil {
		log.Errorf(err)

		return
	}

	// закрыть файл
	defer Close(f, "")

	log.Infof("определен путь до файла: %q", target.Path())

	// отправить клиенту заголовки и файл
	if err = c.sendFile(f, target, head); err != nil {
		log.Errorf(err)
	}
}

// сопоставляем ошибку разрешения пути со статусом ответа
func resolveErrorStatus(err error) int {
	switch {
	// некорректный путь - некорректный запрос
	case errors.Is(err, resolve.ErrBadPath):
		return consts.StatusBadRequest
	// файла нет, путь выходит за корневой каталог или файл не обычный - не найдено;
	// выход за корневой каталог не отличим для клиента от отсутствия файла
	case errors.Is(err, resolve.ErrNotFound),
		errors.Is(err, resolve.ErrOutsideRoot),
		errors.Is(err, resolve.ErrNotRegular):
		return consts.StatusNotFound
	default:
		return consts.StatusInternalServerError
	}
}

// отправить клиенту заголовки и файл
func (c *Connection) sendFile(f *os.File, target *resolve.Target, head bool) error {
	// отправляем клиенту заголовки
	err := c.sendResponseHeader(&headerdata.StatusData{
		Code: consts.StatusOK,
		Size: target.Size(),
		Name: target.Name(),
	})
	if err != nil {
		return err
	}

	// для HEAD тело не отправляется
	if head {
		return nil
	}

	// отправить файл клиенту;
	// заголовки уже отправлены: при ошибке записи соединение просто закрывается
	if err = file.Send(c.conn, f); err != nil {
		return fmt.Errorf("файл не был отправлен клиенту: %w", err)
	}

	return nil
}

// получаем дескриптор открытого файла
func (c *Connection) openFile(path string, head bool) (*os.File, error) {
	f, err := file.Open(path)
	if err != nil {
		code := consts.StatusInternalServerError

		// файл мог исчезнуть или стать недоступным между разрешением пути и открытием
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			code = consts.StatusNotFound
		}

		// отправляем клиенту: ошибка при открытии файла
		c.sendError(code, head)

		return nil, err
	}

	return f, nil
}

// отправляем клиенту ответ с ошибкой: заголовки и фиксированное тело
func (c *Connection) sendError(code int, head bool) {
	body := headerdata.ErrorBody(code)

	err := c.sendResponseHeader(&headerdata.StatusData{
		Code:        code,
		Size:        int64(len(body)),
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		log.Errorf(err)

		return
	}

	// для HEAD тело не отправляется
	if head {
		return
	}

	if _, err := c.conn.Write(body); err != nil {
		log.Errorf(err)
	}
}

// отправляем клиенту заголовки ответа
func (c *Connection) sendResponseHeader(statusData *headerdata.StatusData) error {
	// формируем данные для ответа
	data := headerdata.HeaderData{}
	data.SetResponseData(statusData)

	// отправляем заголовки клиенту
	if err := data.WriteResponseHeader(c.conn); err != nil {
		return fmt.Errorf("не удалось отправить заголовки ответа: %w", err)
	}

	return nil
}

// Close - закрытие файла или соединения
func Close(c io.Closer, m string) {
	err := c.Close()
	if err != nil {
		log.Errorf(err)

		return
	}

	if m != "" {
		log.Infof(m)
	}
}
