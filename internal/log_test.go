package internal

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateLeftWithPrefix(t *testing.T) {
	tests := []struct {
		text, prefix string
		n            int
		want         string
	}{
		{text: "lua/init.lua", n: 40, prefix: "...", want: "lua/init.lua"},
		{text: "lua/init.lua", n: 8, prefix: "...", want: "...init.lua"},
		{text: "lua/init.lua", n: 0, prefix: "...", want: "..."},
		{text: "données/été.txt", n: 7, prefix: "…", want: "…été.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateLeftWithPrefix(tt.text, tt.n, tt.prefix))
		})
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), log.New(&buf, Prefix("lua.zip", "lua/init.lua"), 0))
	Logger(ctx).Printf("hello")
	assert.Equal(t, "\"lua.zip\" [lua/init.lua] - hello\n", buf.String())

	assert.Equal(t, log.Default(), Logger(context.Background()))
}
