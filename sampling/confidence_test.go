package sampling

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/melodot/melodot/db/dbfactory"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
)

func TestPermillOneMinusBaseToTheK(t *testing.T) {
	c := qt.New(t)

	base := NewPermill(800_000) // 0.8
	conf := Confidence{Commitments: []kzg.Commitment{{}, {}}}
	c.Assert(conf.Value(base), qt.Equals, PermillZero)

	conf.Samples = []Sample{{IsAvailable: true}}
	// 1 - 0.8^1 = 0.2
	c.Assert(conf.Value(base), qt.Equals, NewPermill(200_000))

	conf.Samples = append(conf.Samples, Sample{IsAvailable: true})
	// 1 - 0.8^2 = 0.36
	c.Assert(conf.Value(base), qt.Equals, NewPermill(360_000))
}

func TestExceedsThreshold(t *testing.T) {
	c := qt.New(t)
	base := NewPermill(800_000)

	conf := Confidence{Samples: make([]Sample, 10)}
	for i := range conf.Samples {
		conf.Samples[i].IsAvailable = true
	}
	// 1 - 0.8^10 ~= 0.893, above 0.8
	c.Assert(conf.ExceedsThreshold(base, AvailabilityThreshold), qt.IsTrue)

	conf.Samples = conf.Samples[:1]
	c.Assert(conf.ExceedsThreshold(base, AvailabilityThreshold), qt.IsFalse)
}

func TestSetSampleChoosesDistinctPositions(t *testing.T) {
	c := qt.New(t)
	conf := Confidence{Commitments: make([]kzg.Commitment, 4)}

	err := conf.SetSample(SamplesPerBlob)
	c.Assert(err, qt.IsNil)
	c.Assert(len(conf.Samples), qt.Equals, SamplesPerBlob)

	seen := make(map[segment.Position]bool)
	for _, s := range conf.Samples {
		c.Assert(seen[s.Position], qt.IsFalse)
		seen[s.Position] = true
		c.Assert(s.IsAvailable, qt.IsFalse)
		c.Assert(s.Position.X < SamplesPerBlob, qt.IsTrue)
		c.Assert(int(s.Position.Y) < len(conf.Commitments), qt.IsTrue)
	}
}

func TestSetSampleRequiresCommitments(t *testing.T) {
	c := qt.New(t)
	var conf Confidence
	err := conf.SetSample(3)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestSetSampleSuccessIsMonotonic(t *testing.T) {
	c := qt.New(t)
	conf := Confidence{
		Samples: []Sample{{Position: segment.Position{X: 1, Y: 0}}},
	}
	conf.SetSampleSuccess(segment.Position{X: 1, Y: 0})
	c.Assert(conf.Samples[0].IsAvailable, qt.IsTrue)

	conf.SetSampleSuccess(segment.Position{X: 9, Y: 9}) // unknown position, no-op
	c.Assert(conf.Samples[0].IsAvailable, qt.IsTrue)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := qt.New(t)
	conf := Confidence{
		Samples: []Sample{
			{Position: segment.Position{X: 1, Y: 2}, IsAvailable: true},
			{Position: segment.Position{X: 3, Y: 4}, IsAvailable: false},
		},
		Commitments: []kzg.Commitment{{1, 2, 3}, {4, 5, 6}},
	}

	decoded, err := Decode(conf.Encode())
	c.Assert(err, qt.IsNil)
	c.Assert(decoded, qt.DeepEquals, conf)
}

func TestSaveLoadRemove(t *testing.T) {
	c := qt.New(t)
	database := dbfactory.NewTest(t)
	id := AppConfidenceId(42, []byte("app-1"))

	conf := Confidence{
		Samples:     []Sample{{Position: segment.Position{X: 1, Y: 0}, IsAvailable: true}},
		Commitments: []kzg.Commitment{{9, 9, 9}},
	}

	_, found, err := Load(database, id)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsFalse)

	c.Assert(conf.Save(database, id), qt.IsNil)

	loaded, found, err := Load(database, id)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsTrue)
	c.Assert(loaded, qt.DeepEquals, conf)

	c.Assert(Remove(database, id), qt.IsNil)
	_, found, err = Load(database, id)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsFalse)
}
