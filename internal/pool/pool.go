// Package pool - пакет с фиксированным набором обработчиков клиентских соединений
package pool

import (
	"net"
	"sync"
)

// HandlerFunc - функция обработки одного клиентского соединения;
// обработчик работает с соединением синхронно от начала до конца
type HandlerFunc func(conn net.Conn)

// Pool - фиксированный набор обработчиков; количество задается при создании и не меняется
type Pool struct {
	tasks chan net.Conn
	wg    sync.WaitGroup
}

// New - создаем обработчиков; каждый обработчик живет все время работы сервера
// и берет следующее соединение, как только закончил с предыдущим
func New(workers int, handler HandlerFunc) *Pool {
	p := &Pool{
		// канал ограничен количеством обработчиков:
		// принимающая сторона ждет, если все обработчики заняты
		tasks: make(chan net.Conn, workers),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)

		go func() {
			defer p.wg.Done()

			// обработчики равноправны: у обработчика нет своего состояния,
			// ошибка в одном соединении не влияет на остальные
			for conn := range p.tasks {
				handler(conn)
			}
		}()
	}

	return p
}

// Serve - передать соединение свободному обработчику;
// блокируется, пока все обработчики заняты
func (p *Pool) Serve(conn net.Conn) {
	p.tasks <- conn
}

// Shutdown - перестать принимать соединения и дождаться завершения уже принятых
func (p *Pool) Shutdown() {
	close(p.tasks)
	p.wg.Wait()
}
