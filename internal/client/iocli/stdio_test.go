package iocli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Проверяем что NewStdio возвращает валидный объект
func TestNewStdio(t *testing.T) {
	stdio := NewStdio()
	assert.NotNil(t, stdio)
}

func pipeInput(t *testing.T, input string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	// Пишем в pipe в отдельной горутине, имитируя ввод пользователя
	go func() {
		_, _ = w.Write([]byte(input))
		_ = w.Close()
	}()
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestPrintlnAndPrintf(t *testing.T) {
	var out bytes.Buffer
	stdio := NewFileIO(pipeInput(t, ""), &out)

	stdio.Println("pending:", 2)
	stdio.Printf("[%s] %s\n", "success", "Synchronized")
	_, err := stdio.Write([]byte("raw\n"))
	require.NoError(t, err)

	assert.Equal(t, "pending: 2\n[success] Synchronized\nraw\n", out.String())
}

// Тест ReadInput: читаем из pipe вместо терминала
func TestReadInput(t *testing.T) {
	var out bytes.Buffer
	stdio := NewFileIO(pipeInput(t, "  remote \nlocal"), &out)

	result, err := stdio.ReadInput("Keep which version? ")
	require.NoError(t, err)
	assert.Equal(t, "remote", result)
	assert.Equal(t, "Keep which version? ", out.String())

	// Строка без завершающего перевода
	result, err = stdio.ReadInput("")
	require.NoError(t, err)
	assert.Equal(t, "local", result)

	_, err = stdio.ReadInput("")
	assert.ErrorIs(t, err, io.EOF)
}

func TestIsInteractive_Pipe(t *testing.T) {
	stdio := NewFileIO(pipeInput(t, ""), io.Discard)
	assert.False(t, stdio.IsInteractive())
}
