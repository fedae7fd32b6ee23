package golden

import (
	"fmt"
)

// Mismatch describes the first difference between an expected and an
// observed Result.
type Mismatch struct {
	Section  string
	Index    int
	Expected string
	Actual   string
}

func (m *Mismatch) Error() string {
	if m.Index < 0 {
		return fmt.Sprintf("%s: expected %s, got %s", m.Section, m.Expected, m.Actual)
	}
	return fmt.Sprintf("%s[%d]: expected %s, got %s", m.Section, m.Index, m.Expected, m.Actual)
}

// Compare returns nil when observed matches expected exactly, otherwise a
// *Mismatch for the first differing entry. Sections are checked in the
// order values, labels, messages, packets.
func Compare(expected, observed *Result) error {
	if m := compareValues(KeyValues, expected.Values, observed.Values); m != nil {
		return m
	}
	if m := compareLabels(KeyLabels, expected.Labels, observed.Labels); m != nil {
		return m
	}
	if m := compareStrings(KeyMessages, expected.Messages, observed.Messages); m != nil {
		return m
	}
	return comparePackets(expected.Packets, observed.Packets)
}

func compareValues(section string, want, got []float64) *Mismatch {
	for i := 0; i < len(want) && i < len(got); i++ {
		if want[i] != got[i] {
			return &Mismatch{Section: section, Index: i, Expected: fmt.Sprint(want[i]), Actual: fmt.Sprint(got[i])}
		}
	}
	return lengthMismatch(section, len(want), len(got))
}

func compareLabels(section string, want, got []LabelRecord) *Mismatch {
	for i := 0; i < len(want) && i < len(got); i++ {
		if want[i] != got[i] {
			return &Mismatch{Section: section, Index: i, Expected: fmt.Sprintf("%+v", want[i]), Actual: fmt.Sprintf("%+v", got[i])}
		}
	}
	return lengthMismatch(section, len(want), len(got))
}

func compareStrings(section string, want, got []string) *Mismatch {
	for i := 0; i < len(want) && i < len(got); i++ {
		if want[i] != got[i] {
			return &Mismatch{Section: section, Index: i, Expected: fmt.Sprintf("%q", want[i]), Actual: fmt.Sprintf("%q", got[i])}
		}
	}
	return lengthMismatch(section, len(want), len(got))
}

func comparePackets(want, got []PacketRecord) error {
	for i := 0; i < len(want) && i < len(got); i++ {
		section := fmt.Sprintf("%s[%d].", KeyPackets, i)
		if m := compareValues(section+KeyValues, want[i].Values, got[i].Values); m != nil {
			return m
		}
		if m := compareLabels(section+KeyLabels, want[i].Labels, got[i].Labels); m != nil {
			return m
		}
	}
	if m := lengthMismatch(KeyPackets, len(want), len(got)); m != nil {
		return m
	}
	return nil
}

func lengthMismatch(section string, want, got int) *Mismatch {
	if want == got {
		return nil
	}
	return &Mismatch{
		Section:  section,
		Index:    -1,
		Expected: fmt.Sprintf("%d entries", want),
		Actual:   fmt.Sprintf("%d entries", got),
	}
}
