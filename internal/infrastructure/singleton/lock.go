// Package singleton 启动前检查端口，避免同一台机器上跑两个后端
package singleton

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// HealthCheckTimeout 探测已有实例的超时
const HealthCheckTimeout = 2 * time.Second

// wsaeaddrinuse Windows 上的 WSAEADDRINUSE
const wsaeaddrinuse = syscall.Errno(10048)

var (
	// ErrAlreadyRunning 端口上已经有一个健康的实例
	ErrAlreadyRunning = errors.New("another instance is already running")
	// ErrPortBusy 端口被其他程序占用
	ErrPortBusy = errors.New("port is in use by another program")
)

// CheckPort 端口可用时返回 nil
// 端口被占用时探测 /health，是本服务返回 ErrAlreadyRunning，否则返回 ErrPortBusy
func CheckPort(port string) error {
	listener, err := net.Listen("tcp", port)
	if err == nil {
		return listener.Close()
	}

	if !isAddrInUse(err) {
		return fmt.Errorf("failed to listen on %s: %w", port, err)
	}
	if isInstanceRunning(port) {
		return ErrAlreadyRunning
	}
	return fmt.Errorf("%w: %s", ErrPortBusy, port)
}

func isAddrInUse(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	return errno == syscall.EADDRINUSE || errno == wsaeaddrinuse
}

// isInstanceRunning /health 返回 200 且 status 为 ok
func isInstanceRunning(port string) bool {
	client := &http.Client{Timeout: HealthCheckTimeout}

	resp, err := client.Get(fmt.Sprintf("http://localhost%s/health", port))
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Status == "ok"
}
