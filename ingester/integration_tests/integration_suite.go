package integration_tests

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	ingesterBaseURL  = "http://localhost:18080"
	generatorBaseURL = "http://localhost:18765"
	maxRetries       = 30
	retryDelay       = 2 * time.Second
)

type IntegrationTestSuite struct {
	suite.Suite
	generatorCmd *exec.Cmd
	ingesterCmd  *exec.Cmd
	ctx          context.Context
	cancel       context.CancelFunc
}

// SetupSuite runs once before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	binDir := s.T().TempDir()
	logDir := binDir

	s.T().Log("Building services...")
	for _, name := range []string{"generator", "ingester"} {
		build := exec.Command("go", "build", "-o", filepath.Join(binDir, name), "./"+name)
		// Use relative path - go up two directories from integration_tests to project root
		build.Dir = "../.."
		build.Stdout = os.Stdout
		build.Stderr = os.Stderr
		s.Require().NoError(build.Run(), "Failed to build %s", name)
	}

	s.T().Log("Starting generator...")
	s.generatorCmd = s.start(filepath.Join(binDir, "generator"),
		"GENERATOR_PORT=18765",
		"GENERATOR_INTERVAL=500ms",
		"LOG_DIR="+logDir,
	)
	s.waitForService(generatorBaseURL + "/health")

	s.T().Log("Starting ingester...")
	s.ingesterCmd = s.start(filepath.Join(binDir, "ingester"),
		"INGESTER_PORT=18080",
		"SOURCE=ws",
		"SOURCE_URL=ws://localhost:18765/",
		"LOG_DIR="+logDir,
	)
	s.waitForService(ingesterBaseURL + "/health")
}

// TearDownSuite runs once after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	s.T().Log("Stopping services...")

	for _, cmd := range []*exec.Cmd{s.ingesterCmd, s.generatorCmd} {
		if cmd != nil && cmd.Process != nil {
			_ = cmd.Process.Signal(os.Interrupt)
			_ = cmd.Wait()
		}
	}
	s.cancel()

	s.T().Log("Services stopped")
}

func (s *IntegrationTestSuite) start(bin string, env ...string) *exec.Cmd {
	cmd := exec.CommandContext(s.ctx, bin)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Start()
	s.Require().NoError(err, "Failed to start %s", bin)
	return cmd
}

// waitForService waits for a service to become available
func (s *IntegrationTestSuite) waitForService(url string) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	for i := 0; i < maxRetries; i++ {
		resp, err := client.Get(url)
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			s.T().Logf("Service at %s is ready", url)
			return
		}
		if resp != nil {
			resp.Body.Close()
		}

		s.T().Logf("Waiting for service at %s (attempt %d/%d)...", url, i+1, maxRetries)
		time.Sleep(retryDelay)
	}

	s.Require().Fail(fmt.Sprintf("Service at %s did not become ready after %d attempts", url, maxRetries))
}
