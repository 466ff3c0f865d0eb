package calibrate

import (
	"context"
	"testing"

	"github.com/sky-flux/ebisu"
)

// BenchmarkFit1000 measures a default-grid fit over 250 facts × 4 quizzes.
func BenchmarkFit1000(b *testing.B) {
	hs := syntheticHistories(ebisu.NewModel(24), 250, 4, 42)
	c, err := New(nil, Config{})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Fit(context.Background(), hs); err != nil {
			b.Fatal(err)
		}
	}
}
