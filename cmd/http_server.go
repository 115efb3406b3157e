package main

import (
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kostushka/http_server/internal/config"
	"github.com/Kostushka/http_server/internal/log"
	"github.com/Kostushka/http_server/internal/server"
)

func main() {
	// конфигурационные данные должны быть получены до запуска сервера
	cfg, err := config.NewConfigData()
	if err != nil {
		stdlog.Fatal(err)
	}

	// создаем логеры
	if err := log.New(cfg.Log()); err != nil {
		stdlog.Fatal(err)
	}

	// занимаем адрес; ошибка фатальна - ни один обработчик еще не запущен
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf(err)
	}

	log.Infof("Запуск сервера с адресом %v на порту %d: корневой каталог %q, обработчиков %d",
		cfg.ListenAddress(), cfg.Port(), cfg.RootPath(), cfg.Workers())

	// завершаем работу по SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		// ошибки отдельных соединений сюда не попадают -
		// Run завершается только при закрытии слушающего сокета
		if err != nil {
			log.Fatalf(err)
		}
	case sig := <-sigCh:
		log.Infof("получен сигнал %v, сервер завершает работу", sig)

		if err := srv.Shutdown(); err != nil {
			log.Errorf(err)
		}

		// дожидаемся обработки уже принятых соединений
		if err := <-errCh; err != nil {
			log.Fatalf(err)
		}
	}
}
