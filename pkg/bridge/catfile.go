package bridge

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/odvcencio/gitgraph/pkg/object"
)

// DefaultTimeout bounds each git subprocess when CatFile.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// CatFile resolves objects by shelling out to `git cat-file`, which sees
// packfiles, alternates and every other storage git itself understands.
type CatFile struct {
	GitDir  string
	Binary  string        // defaults to "git"
	Timeout time.Duration // per invocation; defaults to DefaultTimeout
}

// Lookup returns the type and canonical content of h.
func (c *CatFile) Lookup(h object.Hash) (object.ObjectType, []byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout())
	defer cancel()
	return c.LookupContext(ctx, h)
}

// LookupContext is Lookup bounded by ctx instead of the configured timeout.
func (c *CatFile) LookupContext(ctx context.Context, h object.Hash) (object.ObjectType, []byte, error) {
	typeOut, err := c.run(ctx, "cat-file", "-t", string(h))
	if err != nil {
		return "", nil, err
	}
	objType := object.ObjectType(strings.TrimSpace(string(typeOut)))
	data, err := c.run(ctx, "cat-file", string(objType), string(h))
	if err != nil {
		return "", nil, err
	}
	return objType, data, nil
}

func (c *CatFile) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *CatFile) binary() string {
	if strings.TrimSpace(c.Binary) != "" {
		return c.Binary
	}
	return "git"
}

func (c *CatFile) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binary(), append([]string{"--git-dir", c.GitDir}, args...)...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.Bytes(), nil
}
