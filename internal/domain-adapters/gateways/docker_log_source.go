package gateways

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// dockerLogSource follows a container's output through the docker CLI
type dockerLogSource struct {
	name      string
	binary    string
	container string
	tail      int
}

// NewDockerLogSource creates a source running `docker logs -f --tail <tail> <container>`
func NewDockerLogSource(name, container string, tail int) *dockerLogSource {
	return &dockerLogSource{name: name, binary: "docker", container: container, tail: tail}
}

// Name returns the source label
func (s *dockerLogSource) Name() string {
	return s.name
}

// Stream sends the container's stdout and stderr lines until ctx is done or
// the docker process exits
func (s *dockerLogSource) Stream(ctx context.Context, lines chan<- string) error {
	pr, pw := io.Pipe()
	//nolint:errcheck // Closing the reader unblocks the copy goroutine on early return
	defer pr.Close()

	//nolint:gosec // G204: container name comes from configuration
	cmd := exec.CommandContext(ctx, s.binary, "logs", "-f", "--tail", strconv.Itoa(s.tail), s.container)
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn docker logs process: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		waitErr <- err
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case lines <- strings.TrimSpace(scanner.Text()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	err := <-waitErr
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("docker logs for %s exited: %w", s.container, err)
	}
	return nil
}
