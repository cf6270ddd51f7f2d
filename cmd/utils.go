package cmd

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/clnbrd/clnbrd/internal/config"
	"github.com/clnbrd/clnbrd/internal/utils"
)

func portFilePath() string {
	return filepath.Join(config.GetRuntimeDir(), "port")
}

func saveActivePort(port int) {
	if err := os.WriteFile(portFilePath(), []byte(strconv.Itoa(port)), 0o644); err != nil {
		utils.Debug("Error writing port file: %v", err)
	}
	utils.Debug("HTTP server listening on port %d", port)
}

func removeActivePort() {
	if err := os.Remove(portFilePath()); err != nil && !os.IsNotExist(err) {
		utils.Debug("Error removing port file: %v", err)
	}
}

// readActivePort reads the port of a running serve, or 0.
func readActivePort() int {
	data, err := os.ReadFile(portFilePath())
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return port
}

// resolveAPIConnection returns the base URL and token for target, which is
// host:port or empty for the locally running server. The local token is only
// reused for loopback targets.
func resolveAPIConnection(target, tokenFlag string) (string, string, error) {
	if target == "" {
		port := readActivePort()
		if port == 0 {
			return "", "", errors.New("no running clnbrd server found; start one with 'clnbrd serve' or pass host:port")
		}
		target = net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	}

	host, _, err := net.SplitHostPort(target)
	if err != nil {
		return "", "", fmt.Errorf("invalid target %q: %w", target, err)
	}

	token := strings.TrimSpace(tokenFlag)
	if token == "" {
		token = strings.TrimSpace(os.Getenv("CLNBRD_TOKEN"))
	}
	if token == "" {
		if !isLoopback(host) {
			return "", "", errors.New("no token provided; use --token or set CLNBRD_TOKEN")
		}
		token = ensureAuthToken()
	}
	return "http://" + target, token, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
