package utils

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

// PingService checks if a service is reachable at the given URL
func PingService(serviceURL string, timeout time.Duration) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	host := parsedURL.Hostname()
	port := parsedURL.Port()

	// Default ports if not specified
	if port == "" {
		switch parsedURL.Scheme {
		case "https":
			port = "443"
		case "mysql", "mariadb":
			port = "3306"
		case "postgres", "postgresql":
			port = "5432"
		case "sqlserver", "mssql":
			port = "1433"
		default:
			port = "80"
		}
	}

	address := net.JoinHostPort(host, port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}

// PingDatabaseHost checks that a networked database server accepts TCP connections
func PingDatabaseHost(dbType, host, port string) error {
	return PingService(fmt.Sprintf("%s://%s", dbType, net.JoinHostPort(host, port)), 1500*time.Millisecond)
}
