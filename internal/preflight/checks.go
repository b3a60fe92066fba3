package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"subburn/internal/config"
	"subburn/internal/deps"
	"subburn/internal/mirror"
)

// CheckTranscription verifies that a provider key is configured and, for
// AssemblyAI, that the key is accepted.
func CheckTranscription(ctx context.Context, cfg *config.Config) Result {
	name := "Transcription (" + cfg.Transcription.Provider + ")"
	if err := cfg.RequireTranscriptionKey(); err != nil {
		return Result{Name: name, Detail: "API key missing"}
	}
	if cfg.Transcription.Provider != config.ProviderAssemblyAI {
		return Result{Name: name, Passed: true, Detail: "API key configured"}
	}
	return CheckAssemblyAI(ctx, cfg.Transcription.BaseURL, cfg.Transcription.APIKey)
}

// CheckAssemblyAI lists one transcript to confirm reachability and auth.
func CheckAssemblyAI(ctx context.Context, baseURL, apiKey string) Result {
	const name = "Transcription (assemblyai)"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/transcript?limit=1", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}
	req.Header.Set("Authorization", strings.TrimSpace(apiKey))

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%d)", resp.StatusCode)}
	}
}

// CheckMirror verifies the artifact mirror bucket is reachable.
func CheckMirror(ctx context.Context, cfg *config.Config) Result {
	const name = "Artifact mirror"

	m, err := mirror.New(cfg, nil, nil)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if m == nil {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := m.Check(checkCtx)
	switch {
	case err != nil:
		return Result{Name: name, Detail: summarizeNetError(err)}
	case !exists:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("bucket %s will be created on first upload", m.Bucket())}
	default:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("bucket %s reachable", m.Bucket())}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the pipeline runs.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return []deps.Status{deps.CheckFFmpeg(ctx, cfg.FFmpegBinary())}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (service unreachable)"
	}
	return err.Error()
}
