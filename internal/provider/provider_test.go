package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

func TestSelectFace(t *testing.T) {
	small := DetectedFace{Region: domain.FaceRegion{Left: 0, Top: 0, Right: 10, Bottom: 10}, Confidence: 0.99}
	large := DetectedFace{Region: domain.FaceRegion{Left: 0, Top: 0, Right: 50, Bottom: 50}, Confidence: 0.80}
	medium := DetectedFace{Region: domain.FaceRegion{Left: 0, Top: 0, Right: 30, Bottom: 30}, Confidence: 0.99}

	faces := []DetectedFace{small, large, medium}

	tests := []struct {
		name   string
		policy SelectionPolicy
		want   DetectedFace
	}{
		{name: "first keeps detector order", policy: SelectFirst, want: small},
		{name: "largest by area", policy: SelectLargest, want: large},
		{name: "confidence tie keeps earliest", policy: SelectConfidence, want: small},
		{name: "unset policy behaves as first", policy: "", want: small},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectFace(faces, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectFace_NoFaces(t *testing.T) {
	_, err := SelectFace(nil, SelectLargest)
	assert.ErrorIs(t, err, domain.ErrNoFaceDetected)
}

func TestParseSelectionPolicy(t *testing.T) {
	for _, s := range []string{"first", "largest", "confidence"} {
		p, err := ParseSelectionPolicy(s)
		require.NoError(t, err)
		assert.Equal(t, SelectionPolicy(s), p)
	}

	p, err := ParseSelectionPolicy("")
	require.NoError(t, err)
	assert.Equal(t, SelectFirst, p)

	_, err = ParseSelectionPolicy("random")
	assert.Error(t, err)
}
