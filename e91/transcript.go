package e91

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxRecordSize bounds the length prefix accepted by TranscriptReader.
const maxRecordSize = 1 << 20

// A TrialRecord is the transcript entry for one measured trial.
type TrialRecord struct {
	Trial
	Outcome Pair
	// Digest is the hex SHA3-256 digest of the trial's circuit.
	Digest string
}

func newTrialRecord(t Trial, p Pair) TrialRecord {
	d := t.Circuit().Digest()
	return TrialRecord{Trial: t, Outcome: p, Digest: hex.EncodeToString(d[:])}
}

func (r TrialRecord) toProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"index":        r.Index,
		"alice":        int(r.Alice),
		"bob":          int(r.Bob),
		"eavesdropped": r.Eavesdropped,
		"outcome":      []interface{}{int(r.Outcome.A), int(r.Outcome.B)},
		"digest":       r.Digest,
	})
}

func trialRecordFromProto(s *structpb.Struct) (TrialRecord, error) {
	f := s.GetFields()
	outcome := f["outcome"].GetListValue().GetValues()
	if len(outcome) != 2 {
		return TrialRecord{}, errors.Wrapf(ErrBadOutcome, "record has %d outcome bits", len(outcome))
	}
	return TrialRecord{
		Trial: Trial{
			Index:        int(f["index"].GetNumberValue()),
			Alice:        Basis(f["alice"].GetNumberValue()),
			Bob:          Basis(f["bob"].GetNumberValue()),
			Eavesdropped: f["eavesdropped"].GetBoolValue(),
		},
		Outcome: Pair{
			A: uint8(outcome[0].GetNumberValue()),
			B: uint8(outcome[1].GetNumberValue()),
		},
		Digest: f["digest"].GetStringValue(),
	}, nil
}

// A TranscriptWriter writes trial records as length-prefixed protocol
// buffers. The frame is: little-endian int32 length | marshalled Struct.
type TranscriptWriter struct {
	w io.Writer
}

// NewTranscriptWriter returns a TranscriptWriter writing to w.
func NewTranscriptWriter(w io.Writer) *TranscriptWriter {
	return &TranscriptWriter{w: w}
}

// Write appends one record to the transcript.
func (t *TranscriptWriter) Write(r TrialRecord) error {
	m, err := r.toProto()
	if err != nil {
		return errors.Wrapf(err, "encoding trial %d", r.Index)
	}
	marshalled, err := proto.Marshal(m)
	if err != nil {
		return errors.Wrapf(err, "marshalling trial %d", r.Index)
	}
	if err := binary.Write(t.w, binary.LittleEndian, int32(len(marshalled))); err != nil {
		return errors.Wrap(err, "writing frame length")
	}
	if _, err := t.w.Write(marshalled); err != nil {
		return errors.Wrap(err, "writing frame")
	}
	return nil
}

// A TranscriptReader reads records written by a TranscriptWriter.
type TranscriptReader struct {
	r io.Reader
}

// NewTranscriptReader returns a TranscriptReader reading from r.
func NewTranscriptReader(r io.Reader) *TranscriptReader {
	return &TranscriptReader{r: r}
}

// Read returns the next record, or io.EOF after the last one.
func (t *TranscriptReader) Read() (TrialRecord, error) {
	var mLen int32
	if err := binary.Read(t.r, binary.LittleEndian, &mLen); err != nil {
		if err == io.EOF {
			return TrialRecord{}, io.EOF
		}
		return TrialRecord{}, errors.Wrap(err, "reading frame length")
	}
	if mLen < 0 || mLen > maxRecordSize {
		return TrialRecord{}, errors.Newf("invalid frame length %d", mLen)
	}
	marshalled := make([]byte, mLen)
	if _, err := io.ReadFull(t.r, marshalled); err != nil {
		return TrialRecord{}, errors.Wrap(err, "reading frame")
	}
	s := new(structpb.Struct)
	if err := proto.Unmarshal(marshalled, s); err != nil {
		return TrialRecord{}, errors.Wrap(err, "unmarshalling frame")
	}
	return trialRecordFromProto(s)
}
