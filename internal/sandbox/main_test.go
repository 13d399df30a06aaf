package sandbox_test

import (
	"testing"

	"github.com/programme-lv/dilemma/internal/sandbox/sandboxtest"
)

func TestMain(m *testing.M) {
	sandboxtest.Main(m)
}
