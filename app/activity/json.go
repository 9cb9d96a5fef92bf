package activity

import (
	"encoding/json"
	"time"

	"tezbot/app/util/timetree"
)

type stateJSON struct {
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	StartedAt time.Time       `json:"started_at"`
}

func (s State) MarshalJSON() ([]byte, error) {
	out := stateJSON{
		Kind:      s.Kind,
		StartedAt: s.StartedAt,
	}

	if s.Payload != nil {
		var (
			data []byte
			err  error
		)

		if raw, ok := s.Payload.(*RawPayload); ok {
			data, err = json.Marshal(timetree.Flatten(raw.Data))
		} else {
			data, err = json.Marshal(s.Payload)
		}
		if err != nil {
			return nil, err
		}

		out.Payload = data
	}

	return json.Marshal(out)
}

func (s *State) UnmarshalJSON(data []byte) error {
	var in stateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	s.Kind = in.Kind
	s.StartedAt = in.StartedAt
	s.Payload = nil

	if len(in.Payload) == 0 {
		return nil
	}

	payload, err := decodePayload(in.Kind, in.Payload)
	if err != nil {
		return err
	}
	s.Payload = payload

	return nil
}

func decodePayload(kind Kind, data json.RawMessage) (Payload, error) {
	switch kind {
	case KindNumberGuess:
		var p NumberGuessPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case KindQuiz:
		var p QuizPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case KindQuizSetup:
		var p QuizSetupPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		if p.Extra != nil {
			p.Extra = timetree.Restore(p.Extra).(map[string]any)
		}
		return &p, nil
	case KindRPS:
		var p RPSPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case KindMagicBall:
		return &MagicBallPayload{}, nil
	case KindTranslate:
		var p TranslatePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	default:
		// Kinds written by other builds survive a round trip untouched.
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return &RawPayload{
			Raw:  kind,
			Data: timetree.Restore(m).(map[string]any),
		}, nil
	}
}
