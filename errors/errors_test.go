package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "operation only",
			err:  NewError("stage", stderrors.New("boom")),
			want: "transfer.stage: boom",
		},
		{
			name: "with key",
			err:  NewError("finalize", stderrors.New("boom")).WithKey("videos/movie.mkv"),
			want: "transfer.finalize videos/movie.mkv: boom",
		},
		{
			name: "with key and part",
			err:  NewError("uploadPart", stderrors.New("boom")).WithKey("videos/movie.mkv").WithPart(7),
			want: "transfer.uploadPart videos/movie.mkv part 7: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewError("uploadPart", ErrPartUpload).WithMessage("after 3 attempts")

	assert.ErrorIs(t, err, ErrPartUpload)
}

func TestSourceReadError(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewSourceReadError(1048576, cause)

	assert.ErrorIs(t, err, ErrSourceRead)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "1048576")

	var srcErr *SourceReadError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, int64(1048576), srcErr.Offset)
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsCancelled(NewError("stage", ErrCancelled)))
	assert.False(t, IsCancelled(NewError("stage", ErrSourceRead)))

	assert.True(t, IsSinkInit(NewError("open", ErrSinkInit)))
	assert.True(t, IsIncompleteParts(NewError("finalize", ErrIncompleteParts)))
	assert.True(t, IsInvalidInput(NewError("validate", ErrInvalidInput)))
	assert.False(t, IsInvalidInput(nil))
}
