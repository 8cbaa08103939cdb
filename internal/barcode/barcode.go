// Package barcode decodes barcode payloads from rendered label images
// through zbarimg.
package barcode

import (
	"context"
	"fmt"
	"strings"

	"github.com/garment-labs/labelaudit/internal/execx"
)

type Config struct {
	Zbarimg string // binary name or absolute path; if empty -> "zbarimg"
}

type Decoder struct {
	cfg    Config
	runner execx.Runner
}

func NewDecoder(cfg Config, runner execx.Runner) *Decoder {
	if cfg.Zbarimg == "" {
		cfg.Zbarimg = "zbarimg"
	}
	if runner == nil {
		runner = execx.ExecRunner{}
	}
	return &Decoder{cfg: cfg, runner: runner}
}

// zbarimg exits 4 when the image holds no barcode at all.
const exitNoBarcode = 4

// Decode returns the decoded payloads in scan order. An image without any
// barcode yields no payloads and no error.
func (d *Decoder) Decode(ctx context.Context, path string) ([]string, error) {
	// zbarimg --quiet --raw <image>
	out, _, err := d.runner.Run(ctx, d.cfg.Zbarimg, "--quiet", "--raw", path)
	if err != nil {
		if execx.ExitCode(err) == exitNoBarcode {
			return nil, nil
		}
		return nil, fmt.Errorf("zbarimg: %w", err)
	}
	var payloads []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			payloads = append(payloads, line)
		}
	}
	return payloads, nil
}

// First returns the first decoded payload, or "" when the image has none.
func (d *Decoder) First(ctx context.Context, path string) (string, error) {
	payloads, err := d.Decode(ctx, path)
	if err != nil || len(payloads) == 0 {
		return "", err
	}
	return payloads[0], nil
}
