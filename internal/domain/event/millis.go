package event

import (
	"strconv"
	"time"
)

// Millis — time.Time, который в JSON живёт как целые миллисекунды от эпохи.
type Millis time.Time

func (m Millis) Time() time.Time {
	return time.Time(m)
}

func (m Millis) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, time.Time(m).UnixMilli(), 10), nil
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*m = Millis(time.UnixMilli(ms).UTC())
	return nil
}
