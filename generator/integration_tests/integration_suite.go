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
	generatorBaseURL = "http://localhost:18865"
	generatorWSURL   = "ws://localhost:18865/"
	maxRetries       = 30
	retryDelay       = 2 * time.Second
)

type IntegrationTestSuite struct {
	suite.Suite
	generatorCmd *exec.Cmd
	ctx          context.Context
	cancel       context.CancelFunc
}

// SetupSuite runs once before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	binDir := s.T().TempDir()

	s.T().Log("Building generator...")
	build := exec.Command("go", "build", "-o", filepath.Join(binDir, "generator"), "./generator")
	// Use relative path - go up two directories from integration_tests to project root
	build.Dir = "../.."
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	s.Require().NoError(build.Run(), "Failed to build generator")

	s.T().Log("Starting generator...")
	s.generatorCmd = exec.CommandContext(s.ctx, filepath.Join(binDir, "generator"))
	s.generatorCmd.Env = append(os.Environ(),
		"GENERATOR_PORT=18865",
		"GENERATOR_INTERVAL=500ms",
		"GENERATOR_SWITCHES=3",
		"GENERATOR_PORTS=2",
		"LOG_DIR="+binDir,
	)
	s.generatorCmd.Stdout = os.Stdout
	s.generatorCmd.Stderr = os.Stderr

	err := s.generatorCmd.Start()
	s.Require().NoError(err, "Failed to start generator")

	// Wait for the generator service to be healthy
	s.T().Log("Waiting for generator service to be ready...")
	s.waitForService(generatorBaseURL + "/health")
}

// TearDownSuite runs once after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	s.T().Log("Stopping generator...")
	if s.generatorCmd != nil && s.generatorCmd.Process != nil {
		_ = s.generatorCmd.Process.Signal(os.Interrupt)
	}

	if s.generatorCmd != nil && s.generatorCmd.Process != nil {
		_ = s.generatorCmd.Wait()
	}
	s.cancel()

	s.T().Log("Generator stopped")
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
