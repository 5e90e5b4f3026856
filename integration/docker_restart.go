//go:build integration
// +build integration

package integration

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

// compose runs docker compose against E2E_COMPOSE_FILE when set, otherwise
// the compose file in the working directory.
func compose(t *testing.T, ctx context.Context, args ...string) string {
	t.Helper()

	full := []string{"compose"}
	if f := getenv("E2E_COMPOSE_FILE", ""); f != "" {
		full = append(full, "-f", f)
	}
	full = append(full, args...)

	out, err := exec.CommandContext(ctx, "docker", full...).CombinedOutput()
	if err != nil {
		t.Fatalf("docker %s: %v\n%s", strings.Join(full, " "), err, out)
	}
	return string(out)
}

// restartCatalogContainer restarts the catalog service, which drops every
// product it holds in memory.
func restartCatalogContainer(t *testing.T, ctx context.Context) {
	t.Helper()

	svc := getenv("E2E_COMPOSE_SERVICE", "catalog")
	compose(t, ctx, "restart", svc)

	if running := compose(t, ctx, "ps", "--status", "running", "--services"); !strings.Contains(running, svc) {
		t.Fatalf("%s is not running after restart; running services: %q", svc, running)
	}
}
