package stacktrace_test

import (
	"testing"

	"github.com/shandysiswandi/seedauth/internal/pkg/stacktrace"
	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	t.Parallel()

	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/seedauth/internal/twofa/usecase.(*Usecase).GenerateCode(...)
	/app/internal/twofa/usecase/code_generate.go:42 +0x1a
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2220
github.com/shandysiswandi/seedauth/internal/pkg/router.(*Router).endpoint.func1()
	/app/internal/pkg/router/router.go:97
`)

	assert.Equal(t, []string{
		"internal/twofa/usecase/code_generate.go:42",
		"internal/pkg/router/router.go:97",
	}, stacktrace.InternalPaths(stack))

	assert.Empty(t, stacktrace.InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/app/main.go:10")))
}
