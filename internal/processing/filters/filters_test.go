package filters

import (
	"testing"

	"pitch-sieve/internal/detect"
	"pitch-sieve/internal/video/videotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

const (
	w = 64
	h = 36
)

func TestBlurScore(t *testing.T) {
	flat := videotest.Solid(w, h, videotest.Gray)
	defer flat.Close()
	sharp := videotest.Checker(w, h, 4, videotest.Grass, videotest.DarkGrass)
	defer sharp.Close()

	flatScore, err := BlurScore(flat)
	require.NoError(t, err)
	sharpScore, err := BlurScore(sharp)
	require.NoError(t, err)

	assert.InDelta(t, 0, flatScore, 1e-9)
	assert.GreaterOrEqual(t, sharpScore, 0.0)
	assert.True(t, IsBlurry(flatScore, 50))
	assert.False(t, IsBlurry(sharpScore, 50))
}

func TestBlurScoreRejectsEmpty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := BlurScore(empty)
	assert.Error(t, err)
}

func TestGreenRatio(t *testing.T) {
	tests := []struct {
		name  string
		frame func() gocv.Mat
		want  float64
	}{
		{"grass", func() gocv.Mat { return videotest.Solid(w, h, videotest.Grass) }, 1},
		{"gray", func() gocv.Mat { return videotest.Solid(w, h, videotest.Gray) }, 0},
		{"red", func() gocv.Mat { return videotest.Solid(w, h, videotest.Red) }, 0},
		{"half", func() gocv.Mat { return videotest.Checker(w, h, 4, videotest.Grass, videotest.Gray) }, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := tt.frame()
			defer frame.Close()

			ratio, err := GreenRatio(frame, GrassBand)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, ratio, 1e-9)
			assert.GreaterOrEqual(t, ratio, 0.0)
			assert.LessOrEqual(t, ratio, 1.0)
		})
	}

	assert.True(t, IsPitch(0.2, 0.2))
	assert.False(t, IsPitch(0.19, 0.2))
}

func TestBrightness(t *testing.T) {
	dark := videotest.Solid(w, h, videotest.Dark)
	defer dark.Close()
	gray := videotest.Solid(w, h, videotest.Gray)
	defer gray.Close()

	b, err := Brightness(dark)
	require.NoError(t, err)
	assert.InDelta(t, 5, b, 0.5)
	assert.False(t, IsExposed(b, 20, 230))

	b, err = Brightness(gray)
	require.NoError(t, err)
	assert.InDelta(t, 128, b, 0.5)
	assert.True(t, IsExposed(b, 20, 230))

	assert.True(t, IsExposed(20, 20, 230))
	assert.True(t, IsExposed(230, 20, 230))
}

func TestMotionDiff(t *testing.T) {
	a := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 0, 0, 0), h, w, gocv.MatTypeCV8UC1)
	defer a.Close()
	b := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(110, 0, 0, 0), h, w, gocv.MatTypeCV8UC1)
	defer b.Close()

	d, err := MotionDiff(a, a)
	require.NoError(t, err)
	assert.Zero(t, d)
	assert.True(t, IsNearStatic(d, 2))

	d, err = MotionDiff(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 10, d, 1e-9)
	assert.False(t, IsNearStatic(d, 2))

	small := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC1)
	defer small.Close()
	_, err = MotionDiff(a, small)
	assert.Error(t, err)
}

func TestCountObjects(t *testing.T) {
	dets := []detect.Detection{
		{ClassID: detect.ClassPerson, Confidence: 0.9},
		{ClassID: detect.ClassPerson, Confidence: 0.4},
		{ClassID: detect.ClassPerson, Confidence: 0.5},
		{ClassID: detect.ClassSportsBall, Confidence: 0.2},
		{ClassID: 2, Confidence: 0.99},
	}

	p := CountObjects(dets, 0.5, 0.3)
	assert.Equal(t, 2, p.Persons)
	assert.False(t, p.Ball)

	p = CountObjects(append(dets, detect.Detection{ClassID: detect.ClassSportsBall, Confidence: 0.3}), 0.5, 0.3)
	assert.True(t, p.Ball)
}

func TestIsReplay(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name string
		s    ReplaySignals
		want bool
	}{
		{"no cut never fires", ReplaySignals{NearStatic: true, GreenRatio: 0, PrevPersons: -1}, false},
		{"cut to live angle", ReplaySignals{Transition: true, GreenRatio: 0.6, PrevPersons: -1}, false},
		{"cut to slow motion", ReplaySignals{Transition: true, NearStatic: true, GreenRatio: 0.6, PrevPersons: -1}, true},
		{"cut to graphic", ReplaySignals{Transition: true, GreenRatio: 0.05, PrevPersons: -1}, true},
		{"player collapse", ReplaySignals{Transition: true, GreenRatio: 0.6, HasPersons: true, Persons: 3, PrevPersons: 10}, true},
		{"exactly half is not a collapse", ReplaySignals{Transition: true, GreenRatio: 0.6, HasPersons: true, Persons: 5, PrevPersons: 10}, false},
		{"unknown previous count", ReplaySignals{Transition: true, GreenRatio: 0.6, HasPersons: true, Persons: 0, PrevPersons: -1}, false},
		{"close shot moving", ReplaySignals{Transition: true, GreenRatio: 0.6, HasPersons: true, Persons: 1, PrevPersons: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReplay(tt.s, th))
		})
	}
}

func TestIsLivePlay(t *testing.T) {
	th := DefaultThresholds()

	assert.True(t, IsLivePlay(Presence{Persons: 1}, 0.15, th))
	assert.False(t, IsLivePlay(Presence{Persons: 0}, 0.9, th))
	assert.False(t, IsLivePlay(Presence{Persons: 4}, 0.05, th))

	th.LiveRequireBall = true
	assert.False(t, IsLivePlay(Presence{Persons: 4}, 0.5, th))
	assert.True(t, IsLivePlay(Presence{Persons: 4, Ball: true}, 0.5, th))
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())

	bad := DefaultThresholds()
	bad.MinBrightness = 240
	assert.Error(t, bad.Validate())

	bad = DefaultThresholds()
	bad.MinGreenRatio = 1.5
	assert.Error(t, bad.Validate())

	bad = DefaultThresholds()
	bad.Grass.Lower[0] = 90
	assert.Error(t, bad.Validate())
}
