package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/alnah/go-econnotes"
	"github.com/alnah/go-econnotes/internal/assets"
	"github.com/alnah/go-econnotes/internal/config"
	"github.com/alnah/go-econnotes/internal/content"
	"github.com/alnah/go-econnotes/internal/dateutil"
	"github.com/alnah/go-econnotes/internal/server"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	renderFailure := &econnotes.AssemblyError{
		Index: 4,
		Kind:  econnotes.KindChart,
		Err:   &econnotes.RenderError{Kind: econnotes.KindChart, Err: errors.New("canvas")},
	}
	invalidBlock := &econnotes.AssemblyError{
		Index: 2,
		Kind:  econnotes.KindTable,
		Err:   &econnotes.ValidationError{Block: "table", Reason: "ragged"},
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "unexpected", err: errors.New("boom"), want: ExitGeneral},
		{name: "render failure", err: renderFailure, want: ExitRender},
		{name: "invalid block", err: invalidBlock, want: ExitUsage},
		{name: "usage", err: fmt.Errorf("%w: unknown command", ErrUsage), want: ExitUsage},
		{name: "config parse", err: fmt.Errorf("%w: line 2", config.ErrConfigParse), want: ExitUsage},
		{name: "config not found", err: config.ErrConfigNotFound, want: ExitUsage},
		{name: "content", err: fmt.Errorf("blocks[3]: %w", content.ErrInvalidContent), want: ExitUsage},
		{name: "date", err: dateutil.ErrInvalidDateFormat, want: ExitUsage},
		{name: "style", err: econnotes.ErrStyleNotFound, want: ExitUsage},
		{name: "toc", err: econnotes.ErrInvalidTOCDepth, want: ExitUsage},
		{name: "notes missing", err: fmt.Errorf("%w: notes.html", content.ErrNotesNotFound), want: ExitIO},
		{name: "content missing", err: fmt.Errorf("loading content: %w", assets.ErrContentNotFound), want: ExitIO},
		{name: "not exist", err: fmt.Errorf("open: %w", os.ErrNotExist), want: ExitIO},
		{name: "write", err: fmt.Errorf("%w: disk full", ErrWriteOutput), want: ExitIO},
		{name: "listen", err: fmt.Errorf("%w: in use", server.ErrListen), want: ExitIO},
		{name: "watch", err: server.ErrWatch, want: ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
