package server_test

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Kostushka/http_server/internal/config"
	"github.com/Kostushka/http_server/internal/connection/consts"
	"github.com/Kostushka/http_server/internal/server"
)

// запускаем сервер на свободном порту и возвращаем его адрес
func startServer(t *testing.T, root string, workers int) net.Addr {
	t.Helper()

	cfg, err := config.New(root, "127.0.0.1", 0, workers, "index.html", "")
	if err != nil {
		t.Fatalf("неожиданная ошибка конфигурации: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		t.Fatalf("не удалось запустить сервер: %v", err)
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Run()
	}()

	t.Cleanup(func() {
		if err := srv.Shutdown(); err != nil {
			t.Errorf("не удалось остановить сервер: %v", err)
		}

		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("сервер завершился с ошибкой: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("сервер не завершил работу")
		}
	})

	return srv.Addr()
}

// отправляем запрос и читаем весь ответ: сервер закрывает соединение после ответа
func doRequest(t *testing.T, addr net.Addr, rawRequest string) string {
	t.Helper()

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("не удалось установить соединение: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(rawRequest)); err != nil {
		t.Fatalf("не удалось отправить запрос: %v", err)
	}

	resp, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("не удалось прочитать ответ: %v", err)
	}

	return string(resp)
}

// разбираем ответ на строку статуса, заголовки и тело
func parseResponse(t *testing.T, resp string) (string, map[string]string, string) {
	t.Helper()

	sep := strings.Index(resp, "\r\n\r\n")
	if sep == -1 {
		t.Fatalf("в ответе нет пустой строки после заголовков: %q", resp)
	}

	lines := strings.Split(resp[:sep], "\r\n")
	headers := make(map[string]string, len(lines)-1)

	for _, line := range lines[1:] {
		sepIndex := strings.Index(line, ":")
		if sepIndex == -1 {
			t.Fatalf("некорректный заголовок ответа: %q", line)
		}

		headers[line[:sepIndex]] = strings.TrimSpace(line[sepIndex+1:])
	}

	return lines[0], headers, resp[sep+4:]
}

// GET существующего файла: 200, тело байт в байт, Content-Length равен размеру
func TestGetFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("не удалось создать файл: %v", err)
	}

	addr := startServer(t, root, 2)

	status, headers, body := parseResponse(t, doRequest(t, addr, "GET /a.txt HTTP/1.0\r\n\r\n"))

	if status != "HTTP/1.0 200 OK" {
		t.Errorf("строка статуса не совпадает: got %q", status)
	}

	if headers["Content-Length"] != "5" {
		t.Errorf("Content-Length не совпадает: got %q, want %q", headers["Content-Length"], "5")
	}

	if body != "hello" {
		t.Errorf("тело не совпадает: got %q, want %q", body, "hello")
	}

	if headers["Connection"] != "close" {
		t.Errorf("заголовок Connection не совпадает: got %q", headers["Connection"])
	}
}

// HEAD возвращает те же статус и Content-Length, что и GET, но пустое тело
func TestHeadFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("не удалось создать файл: %v", err)
	}

	addr := startServer(t, root, 2)

	getStatus, getHeaders, _ := parseResponse(t, doRequest(t, addr, "GET /a.txt HTTP/1.0\r\n\r\n"))
	headStatus, headHeaders, headBody := parseResponse(t, doRequest(t, addr, "HEAD /a.txt HTTP/1.0\r\n\r\n"))

	if headStatus != getStatus {
		t.Errorf("строки статуса не совпадают: GET %q, HEAD %q", getStatus, headStatus)
	}

	if headHeaders["Content-Length"] != getHeaders["Content-Length"] {
		t.Errorf("Content-Length не совпадает: GET %q, HEAD %q",
			getHeaders["Content-Length"], headHeaders["Content-Length"])
	}

	if headBody != "" {
		t.Errorf("тело HEAD должно быть пустым: got %q", headBody)
	}
}

// ошибочные запросы получают полный ответ с корректным Content-Length
func TestErrorResponses(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("не удалось создать файл: %v", err)
	}

	addr := startServer(t, root, 2)

	testCases := []struct {
		name       string
		rawRequest string
		status     string
	}{
		{
			name:       "несуществующий файл",
			rawRequest: "GET /missing.txt HTTP/1.0\r\n\r\n",
			status:     "HTTP/1.0 404 Not Found",
		},
		{
			name:       "выход за корневой каталог",
			rawRequest: "GET /../etc/passwd HTTP/1.0\r\n\r\n",
			status:     "HTTP/1.0 404 Not Found",
		},
		{
			name:       "неподдерживаемый метод",
			rawRequest: "POST /a.txt HTTP/1.0\r\n\r\n",
			status:     "HTTP/1.0 405 Method Not Allowed",
		},
		{
			name:       "некорректный запрос",
			rawRequest: "GET /%zz HTTP/1.0\r\n\r\n",
			status:     "HTTP/1.0 400 Bad Request",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, headers, body := parseResponse(t, doRequest(t, addr, tc.rawRequest))

			if status != tc.status {
				t.Errorf("строка статуса не совпадает: got %q, want %q", status, tc.status)
			}

			// тело ошибки непустое, Content-Length точный
			if body == "" {
				t.Error("тело ошибки должно быть непустым")
			}

			if headers["Content-Length"] != strconv.Itoa(len(body)) {
				t.Errorf("Content-Length не совпадает с телом: got %q, want %d",
					headers["Content-Length"], len(body))
			}
		})
	}
}

// содержимое за пределами корневого каталога не должно отдаваться никогда
func TestTraversalNeverServed(t *testing.T) {
	tmp := t.TempDir()

	root := filepath.Join(tmp, "root")
	if err := os.Mkdir(root, 0755); err != nil {
		t.Fatalf("не удалось создать каталог: %v", err)
	}

	secret := "top secret"
	if err := os.WriteFile(filepath.Join(tmp, "secret.txt"), []byte(secret), 0644); err != nil {
		t.Fatalf("не удалось создать файл: %v", err)
	}

	addr := startServer(t, root, 2)

	traversals := []string{
		"GET /../secret.txt HTTP/1.0\r\n\r\n",
		"GET /%2e%2e/secret.txt HTTP/1.0\r\n\r\n",
		"GET /%2e%2e%2fsecret.txt HTTP/1.0\r\n\r\n",
		"GET /./../secret.txt HTTP/1.0\r\n\r\n",
		"GET //../secret.txt HTTP/1.0\r\n\r\n",
	}

	for _, rawRequest := range traversals {
		status, _, body := parseResponse(t, doRequest(t, addr, rawRequest))

		if !strings.HasPrefix(status, "HTTP/1.0 404") {
			t.Errorf("запрос %q должен отклоняться: got %q", rawRequest, status)
		}

		if strings.Contains(body, secret) {
			t.Errorf("запрос %q отдал содержимое за пределами корня", rawRequest)
		}
	}
}

// K одновременных соединений получают каждый свой файл без перемешивания;
// файлы больше буфера чтения, чтобы ответ собирался из нескольких кусков
func TestConcurrentConnections(t *testing.T) {
	const workers = 4

	root := t.TempDir()

	contents := make([]string, workers)
	for i := range contents {
		// различимое содержимое, превышающее размер буфера
		contents[i] = strings.Repeat(fmt.Sprintf("file-%d-", i), consts.BufSize/4)

		name := fmt.Sprintf("f%d.txt", i)
		if err := os.WriteFile(filepath.Join(root, name), []byte(contents[i]), 0644); err != nil {
			t.Fatalf("не удалось создать файл: %v", err)
		}
	}

	addr := startServer(t, root, workers)

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			rawRequest := fmt.Sprintf("GET /f%d.txt HTTP/1.0\r\n\r\n", i)

			conn, err := net.Dial("tcp", addr.String())
			if err != nil {
				t.Errorf("не удалось установить соединение: %v", err)

				return
			}
			defer conn.Close()

			if _, err := conn.Write([]byte(rawRequest)); err != nil {
				t.Errorf("не удалось отправить запрос: %v", err)

				return
			}

			resp, err := io.ReadAll(conn)
			if err != nil {
				t.Errorf("не удалось прочитать ответ: %v", err)

				return
			}

			sep := bytes.Index(resp, []byte("\r\n\r\n"))
			if sep == -1 {
				t.Errorf("в ответе нет пустой строки после заголовков")

				return
			}

			if got := string(resp[sep+4:]); got != contents[i] {
				t.Errorf("тело соединения %d не совпадает: got %d байт, want %d байт",
					i, len(got), len(contents[i]))
			}
		}(i)
	}

	wg.Wait()
}

// после остановки сервер не принимает новые соединения
func TestShutdownStopsAccepting(t *testing.T) {
	root := t.TempDir()

	cfg, err := config.New(root, "127.0.0.1", 0, 2, "index.html", "")
	if err != nil {
		t.Fatalf("неожиданная ошибка конфигурации: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		t.Fatalf("не удалось запустить сервер: %v", err)
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Run()
	}()

	addr := srv.Addr()

	if err := srv.Shutdown(); err != nil {
		t.Fatalf("не удалось остановить сервер: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("сервер завершился с ошибкой: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("сервер не завершил работу")
	}

	if conn, err := net.DialTimeout("tcp", addr.String(), time.Second); err == nil {
		_ = conn.Close()
		t.Error("после остановки сервер не должен принимать соединения")
	}
}
