// Package server - пакет для приема клиентских соединений
package server

import (
	"errors"
	"fmt"
	"net"

	"github.com/Kostushka/http_server/internal/config"
	"github.com/Kostushka/http_server/internal/connection"
	"github.com/Kostushka/http_server/internal/log"
	"github.com/Kostushka/http_server/internal/pool"
)

// Server - слушающий сокет и обработчики соединений
type Server struct {
	listener *net.TCPListener
	pool     *pool.Pool
}

// New - занимаем адрес и создаем обработчиков; адрес занимается ровно один раз,
// ошибка здесь фатальна для процесса
func New(cfg *config.Data) (*Server, error) {
	// объявляем структуру с данными будущего сервера
	laddr := net.TCPAddr{
		IP:   cfg.ListenAddress(),
		Port: cfg.Port(),
	}

	// получаем структуру с методами для работы с соединениями
	l, err := net.ListenTCP("tcp", &laddr)
	if err != nil {
		return nil, fmt.Errorf("не удалось занять адрес %s: %w", laddr.String(), err)
	}

	return &Server{
		listener: l,
		pool: pool.New(cfg.Workers(), func(conn net.Conn) {
			connection.New(conn, cfg).ProcessingConn()
		}),
	}, nil
}

// Addr - возвращает адрес, на котором сервер принимает соединения
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Run - принимаем соединения, пока слушающий сокет не будет закрыт;
// по выходе дожидаемся завершения обработки уже принятых соединений
func (s *Server) Run() error {
	defer s.pool.Shutdown()

	log.Infof("tcp сокет слушает соединения на %s", s.listener.Addr())

	for {
		// слушаем сокетные соединения (запросы)
		conn, err := s.listener.AcceptTCP()
		if err != nil {
			// слушающий сокет закрыт - штатное завершение
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			// временная ошибка accept (например, закончились дескрипторы)
			// не должна останавливать прием соединений
			log.Errorf("не удалось принять соединение: %v", err)

			continue
		}

		log.Infof("запрос на соединение от клиента %s принят", conn.RemoteAddr())

		// передаем соединение свободному обработчику
		s.pool.Serve(conn)
	}
}

// Shutdown - закрываем слушающий сокет; Run после этого завершает работу,
// дождавшись обработки уже принятых соединений
func (s *Server) Shutdown() error {
	return s.listener.Close()
}
