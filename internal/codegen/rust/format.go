package rust

import (
	"context"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/build"
)

// Format pipes src through rustfmt. When rustfmt is unavailable or rejects
// the input, src is returned unchanged together with the error.
func Format(ctx context.Context, src string) (string, error) {
	out, err := build.Run(ctx, build.RustToolchain{}.Format(), []byte(src))
	if err != nil {
		return src, err
	}
	formatted := string(out)
	if strings.TrimSpace(formatted) == "" && strings.TrimSpace(src) != "" {
		return src, nil
	}
	return formatted, nil
}
