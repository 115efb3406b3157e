// Package consts - пакет с константами
package consts

const (
	// StatusOK - статус ответа: хорошо
	StatusOK = 200
	// StatusBadRequest - статус ответа: некорректный запрос
	StatusBadRequest = 400
	// StatusNotFound - статус ответа: не найдено
	StatusNotFound = 404
	// StatusMethodNotAllowed - статус ответа: метод не поддерживается
	StatusMethodNotAllowed = 405
	// StatusInternalServerError - статус ответа: внутренняя ошибка сервера
	StatusInternalServerError = 500
	// BufSize - дефолтный размер буфера
	BufSize = 4096
	// MaxRequestSize - максимальный суммарный размер строки запроса и заголовков запроса;
	// данные сверх лимита не читаем, чтобы ограничить память на одно соединение
	MaxRequestSize = 8192
)
