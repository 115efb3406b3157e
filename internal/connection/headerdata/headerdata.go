// Package headerdata - пакет для формирования и отправки строки статуса и заголовков ответа
package headerdata

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Kostushka/http_server/internal/connection/consts"
	"github.com/Kostushka/http_server/internal/log"
)

// serverName - значение заголовка Server
const serverName = "http_server/0.1.0"

// StatusData - собираемые данные для строки статуса и заголовков ответа
type StatusData struct {
	Code        int
	Size        int64
	Name        string
	ContentType string
}

// ResponseData - сформированные данные для строки статуса и заголовков ответа
type ResponseData struct {
	Status      string
	Phrase      string
	Size        string
	Name        string
	ContentType string
}

// ResponseStatusLine - строка статуса ответа
type ResponseStatusLine struct {
	Version string
	Status  string
	Phrase  string
}

// ResponseHeaders - заголовки ответа
type ResponseHeaders []string

// ErrorBody - фиксированное тело ответа для статуса ошибки
func ErrorBody(code int) []byte {
	return []byte(strconv.Itoa(code) + " " + http.StatusText(code) + "\n")
}

// HeaderData - структура с сформированными данными для строки статуса и заголовков ответа
type HeaderData struct {
	responseData *ResponseData
}

// ResponseData - возвращает сформированные данные ответа
func (h *HeaderData) ResponseData() *ResponseData {
	return h.responseData
}

// SetResponseData - формируем данные заголовков для ответа клиенту
func (h *HeaderData) SetResponseData(data *StatusData) {
	// заполняем структуру данных для формирования ответа клиенту
	h.responseData = &ResponseData{
		Status:      strconv.Itoa(data.Code),
		Phrase:      http.StatusText(data.Code),
		Size:        strconv.FormatInt(data.Size, 10),
		Name:        data.Name,
		ContentType: data.ContentType,
	}
}

// WriteResponseHeader - формируем и отправляем клиенту заголовки ответа;
// размер тела в Content-Length всегда равен фактическому размеру тела,
// даже если тело не отправляется (метод HEAD)
func (h *HeaderData) WriteResponseHeader(w io.Writer) error {
	// соединение живет один обмен запрос-ответ, поэтому версия в ответе всегда HTTP/1.0
	respStatus := ResponseStatusLine{
		Version: "HTTP/1.0",
		Status:  h.responseData.Status,
		Phrase:  h.responseData.Phrase,
	}
	respHeaders := ResponseHeaders{}

	respHeaders = append(respHeaders, "Server: "+serverName)
	respHeaders = append(respHeaders, "Connection: close")
	respHeaders = append(respHeaders, "Date: "+time.Now().UTC().Format(http.TimeFormat))
	respHeaders = append(respHeaders, "Content-Length: "+h.responseData.Size)

	// не определяем тип по имени файла, если ошибка
	if h.responseData.Status != strconv.Itoa(consts.StatusOK) {
		respHeaders = append(respHeaders, "Content-Type: text/plain; charset=utf-8")

		return writeToConn(w, respStatus, respHeaders)
	}

	if h.responseData.ContentType != "" {
		respHeaders = append(respHeaders, "Content-Type: "+h.responseData.ContentType)

		return writeToConn(w, respStatus, respHeaders)
	}

	// если у файла в названии есть расширение, пишем тип файла в заголовок Content-Type
	respHeaders = append(respHeaders, "Content-Type: "+contentTypeByName(h.responseData.Name))

	// пишем ответ в клиентский сокет
	return writeToConn(w, respStatus, respHeaders)
}

// определяем тип содержимого по расширению файла
func contentTypeByName(name string) string {
	extIndex := strings.LastIndex(name, ".")
	if extIndex == -1 {
		return "application/octet-stream"
	}

	contentType := mime.TypeByExtension(name[extIndex:])
	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}

// пишем заголовки в клиентский сокет
func writeToConn(w io.Writer, respStatus ResponseStatusLine, respHeaders ResponseHeaders) error {
	// сформировать статусную строку и буфер с заголовками ответа
	var headers strings.Builder

	fmt.Fprintf(&headers, "%s %s %s\r\n", respStatus.Version, respStatus.Status, respStatus.Phrase)

	for _, v := range respHeaders {
		headers.WriteString(v + "\r\n")
	}

	// в конце после заголовков - пустая строка
	headers.WriteString("\r\n")

	// записать в клиентский сокет статусную строку и заголовки ответа
	_, err := w.Write([]byte(headers.String()))
	if err != nil {
		return err
	}

	log.Infof("клиенту отправлены заголовки ответа: %s %s %s", respStatus.Version, respStatus.Status, respStatus.Phrase)

	return nil
}
