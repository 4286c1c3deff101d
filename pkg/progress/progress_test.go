package progress_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/paramspace/pkg/progress"
)

func TestDraw(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "███████░░░", progress.Draw(0.7, 10))
	assert.Equal(t, "░░░░░", progress.Draw(-1, 5))
	assert.Equal(t, "█████", progress.Draw(2, 5))
	assert.Empty(t, progress.Draw(0.5, 0))
}

func TestIsTerminal_Buffer(t *testing.T) {
	t.Parallel()

	assert.False(t, progress.IsTerminal(&bytes.Buffer{}))
}

func TestBar_Update(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	bar := progress.New(&buf, progress.WithLabel("expanding"), progress.WithWidth(10))

	bar.Update(4096, 8192)
	bar.Update(8192, 8192)

	out := buf.String()
	assert.Contains(t, out, "\rexpanding [█████░░░░░]  50%  4,096 / 8,192 rows")
	assert.Contains(t, out, "\rexpanding [██████████] 100%  8,192 / 8,192 rows\n")
	assert.NotContains(t, out, "\x1b[", "no colour on a non-terminal writer")
}

func TestBar_SkipsUnchangedPercent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	bar := progress.New(&buf, progress.WithUnit("combinations"))

	bar.Update(1, 1000)
	bar.Update(2, 1000)
	bar.Update(9, 1000)

	assert.Equal(t, 1, strings.Count(buf.String(), "\r"))
	assert.Contains(t, buf.String(), "combinations")
}

func TestBar_IgnoresEmptyTotal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	progress.New(&buf).Update(0, 0)

	assert.Empty(t, buf.String())
}

func TestBar_Finish(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	bar := progress.New(&buf, progress.WithColor(false))
	bar.Finish()
	assert.Empty(t, buf.String())

	bar.Update(1, 4)
	bar.Finish()
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	bar.Finish()
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestBar_ConcurrentUpdates(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	bar := progress.New(&buf)

	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			bar.Update(i, 100)
		}()
	}

	wg.Wait()
	bar.Finish()

	assert.NotEmpty(t, buf.String())
}
