package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reliefops/relief/pkg/audit"
	"github.com/reliefops/relief/pkg/credentials"
	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/metrics"
	"github.com/reliefops/relief/pkg/server"
	"github.com/reliefops/relief/pkg/server/endpoints"
	gormstore "github.com/reliefops/relief/pkg/server/store/gorm"
	"github.com/reliefops/relief/pkg/session"
)

var sessionKey = bytes.Repeat([]byte("k"), 32)

// uiAccounts maps UI usernames to their password and role. Each logs in as
// the principal of the same name.
var uiAccounts = []struct {
	username string
	password string
	role     session.Role
}{
	{"admin", "admin123", session.RoleAdmin},
	{"operator", "operator123", session.RoleOperator},
	{"viewer", "viewer123", session.RoleViewer},
}

func accounts() []credentials.Account {
	out := make([]credentials.Account, 0, len(uiAccounts))
	for _, a := range uiAccounts {
		p := principals[a.username]
		out = append(out, credentials.Account{
			Username:  a.username,
			Password:  a.password,
			Role:      a.role,
			Principal: credentials.PrincipalSettings{User: p.User, Password: p.Password},
		})
	}
	return out
}

// ServerInstance represents a running relief server
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	listener      net.Listener
	cancel        context.CancelFunc
	serverProcess *exec.Cmd
}

// startInlineServer starts the server in-process on a free port.
func startInlineServer(store db.Config) (*ServerInstance, error) {
	reg, err := credentials.NewRegistry(accounts()...)
	if err != nil {
		return nil, err
	}
	codec, err := session.NewCodec(sessionKey, time.Hour)
	if err != nil {
		return nil, err
	}

	conn := db.NewPostgresConnector(store)
	s := server.NewServer(
		server.Stores{
			Records:   gormstore.NewRecordsStore(conn),
			Workflows: gormstore.NewWorkflowStore(conn),
			Reports:   gormstore.NewReportsStore(conn),
			Health:    gormstore.NewHealthStore(conn),
		},
		credentials.NewRouter(reg, conn, principals["guest"]),
		codec,
		metrics.New(),
		"127.0.0.1",
		"0",
	)
	s.Audit = audit.New(
		audit.Settings{AppName: "relief-it", Hostname: "localhost", ProcID: strconv.Itoa(os.Getpid())},
		audit.WithWriter(nil),
		audit.WithSink(audit.NewStoreSink(conn, principals["audit"])),
	)
	endpoints.RegisterAll(s)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	instance := &ServerInstance{
		Server:    s,
		ServerURL: "http://" + listener.Addr().String(),
		listener:  listener,
	}

	go func() {
		_ = s.StartWithListener(listener)
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// startBinaryServer starts reliefctl server with an accounts file and the
// store location in its environment.
func startBinaryServer(binaryPath string, store db.Config) (*ServerInstance, error) {
	if _, err := os.Stat(binaryPath); err != nil {
		return nil, fmt.Errorf("RELIEF_BINARY path does not exist: %s", binaryPath)
	}

	dir, err := os.MkdirTemp("", "relief-integration")
	if err != nil {
		return nil, err
	}
	accountsFile := filepath.Join(dir, "accounts.yml")
	data, err := yaml.Marshal(map[string]interface{}{"accounts": accountsYAML()})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(accountsFile, data, 0o600); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	port := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", strconv.Itoa(port))
	cmd.Env = append(os.Environ(),
		"RELIEF_CONFIG_PATH="+dir,
		"RELIEF_STORE_HOST="+store.Host,
		"RELIEF_STORE_PORT="+strconv.Itoa(store.Port),
		"RELIEF_STORE_DATABASE="+store.Database,
		"RELIEF_STORE_SSLMODE="+store.SSLMode,
		"RELIEF_ANONYMOUS_USER="+principals["guest"].User,
		"RELIEF_ANONYMOUS_PASSWORD="+principals["guest"].Password,
		"RELIEF_ACCOUNTS_FILE="+accountsFile,
		"RELIEF_SESSION_KEY="+base64.StdEncoding.EncodeToString(sessionKey),
		"RELIEF_AUDIT_OUTPUT=off",
		"RELIEF_AUDIT_USER="+principals["audit"].User,
		"RELIEF_AUDIT_PASSWORD="+principals["audit"].Password,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     fmt.Sprintf("http://127.0.0.1:%d", port),
		cancel:        cancel,
		serverProcess: cmd,
	}
	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

func accountsYAML() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(uiAccounts))
	for _, a := range uiAccounts {
		p := principals[a.username]
		out = append(out, map[string]interface{}{
			"username": a.username,
			"password": a.password,
			"role":     a.role.String(),
			"principal": map[string]string{
				"user":     p.User,
				"password": p.Password,
			},
		})
	}
	return out
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = si.Server.Shutdown(ctx)
		cancel()
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}

// waitForServer polls the status endpoint until it answers 200 or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/status")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}
