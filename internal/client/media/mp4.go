package media

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/abema/go-mp4"
)

var (
	// errNoMovieHeader is returned when an mp4 has no moov/mvhd box.
	errNoMovieHeader = errors.New("mp4: movie header not found")
	// ErrBadDuration is returned when a movie header reports a duration
	// that does not fit a time.Duration or has no timescale.
	ErrBadDuration = errors.New("mp4: invalid duration")
)

// VideoDuration reads the duration from an mp4's movie header box.
func VideoDuration(r io.ReadSeeker) (time.Duration, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	boxes, err := mp4.ExtractBoxWithPayload(r, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil {
		return 0, fmt.Errorf("mp4: read movie header: %w", err)
	}
	if len(boxes) == 0 {
		return 0, errNoMovieHeader
	}
	mvhd, ok := boxes[0].Payload.(*mp4.Mvhd)
	if !ok {
		return 0, errNoMovieHeader
	}
	return mediaDuration(mvhd.GetDuration(), mvhd.Timescale)
}

// mediaDuration converts units of 1/timescale seconds without overflowing.
func mediaDuration(units uint64, timescale uint32) (time.Duration, error) {
	if timescale == 0 {
		return 0, ErrBadDuration
	}
	secs := units / uint64(timescale)
	if secs >= uint64(math.MaxInt64/int64(time.Second)) {
		return 0, ErrBadDuration
	}
	frac := units % uint64(timescale) * uint64(time.Second) / uint64(timescale)
	return time.Duration(secs)*time.Second + time.Duration(frac), nil
}
