package codelog

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/seedauth/internal/pkg/atomicfile"
	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

// File keeps only the latest code log line; each write replaces the file.
type File struct {
	path string
	ins  instrument.Instrumentation
}

func NewFile(path string, ins instrument.Instrumentation) *File {
	return &File{path: path, ins: ins}
}

func (f *File) Write(ctx context.Context, line string) error {
	_, span := f.ins.Tracer("twofa.outbound.codelog").Start(ctx, "File.Write")
	defer span.End()

	if err := atomicfile.Write(f.path, []byte(line), 0o644); err != nil {
		err = fmt.Errorf("codelog: write %s: %w", f.path, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
