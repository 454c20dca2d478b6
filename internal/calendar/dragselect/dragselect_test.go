package dragselect

import (
	"reflect"
	"testing"
)

// workingDays — две рабочие недели июня 2025 без выходных.
func workingDays() []string {
	return []string{
		"2025-06-02", "2025-06-03", "2025-06-04", "2025-06-05", "2025-06-06",
		"2025-06-09", "2025-06-10", "2025-06-11", "2025-06-12", "2025-06-13",
	}
}

func assertSelected(t *testing.T, s *Selector, want []string) {
	t.Helper()
	got := s.Selected()
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Selected() = %v, ожидается %v", got, want)
	}
}

func TestPointerDown_Enter(t *testing.T) {
	s := New(workingDays())

	s.PointerDown("2025-06-02", false)
	if !s.IsDragging() {
		t.Fatal("после PointerDown ожидается протягивание")
	}
	if s.Anchor() != "2025-06-02" {
		t.Errorf("Anchor() = %q, ожидается 2025-06-02", s.Anchor())
	}
	assertSelected(t, s, []string{"2025-06-02"})

	s.PointerEnter("2025-06-04")
	assertSelected(t, s, []string{"2025-06-02", "2025-06-03", "2025-06-04"})
}

func TestPointerEnter_ReplacesNotAdds(t *testing.T) {
	s := New(workingDays())

	s.PointerDown("2025-06-04", false)
	s.PointerEnter("2025-06-06")
	s.PointerEnter("2025-06-03")
	assertSelected(t, s, []string{"2025-06-03", "2025-06-04"})
}

func TestPointerEnter_SkipsNonWorkingDays(t *testing.T) {
	s := New(workingDays())

	// Выходные 07.06 и 08.06 не входят в индексное пространство
	s.PointerDown("2025-06-05", false)
	s.PointerEnter("2025-06-10")
	assertSelected(t, s, []string{"2025-06-05", "2025-06-06", "2025-06-09", "2025-06-10"})

	// Наведение на невыбираемую дату не меняет выделение
	s.PointerEnter("2025-06-07")
	assertSelected(t, s, []string{"2025-06-05", "2025-06-06", "2025-06-09", "2025-06-10"})
}

func TestPointerEnter_IgnoredWhenIdle(t *testing.T) {
	s := New(workingDays())

	s.PointerEnter("2025-06-04")
	assertSelected(t, s, nil)

	s.PointerDown("2025-06-02", false)
	s.PointerUp()
	s.PointerEnter("2025-06-04")
	assertSelected(t, s, []string{"2025-06-02"})
}

func TestPointerUp_RetainsSelection(t *testing.T) {
	s := New(workingDays())

	s.PointerDown("2025-06-02", false)
	s.PointerEnter("2025-06-03")
	s.PointerUp()

	if s.IsDragging() {
		t.Error("после PointerUp протягивание должно завершиться")
	}
	if s.Anchor() != "" {
		t.Errorf("Anchor() = %q, ожидается пустой", s.Anchor())
	}
	assertSelected(t, s, []string{"2025-06-02", "2025-06-03"})
}

func TestPlainPointerDown_CollapsesToSingleton(t *testing.T) {
	s := New(workingDays())

	s.PointerDown("2025-06-02", false)
	s.PointerEnter("2025-06-06")
	s.PointerUp()

	s.PointerDown("2025-06-10", false)
	assertSelected(t, s, []string{"2025-06-10"})
}

func TestExtend(t *testing.T) {
	s := New(workingDays())

	s.PointerDown("2025-06-02", false)
	s.PointerEnter("2025-06-03")
	s.PointerUp()

	// Расширение от наибольшей выбранной даты (03.06) до 11.06
	s.PointerDown("2025-06-11", true)
	assertSelected(t, s, []string{
		"2025-06-02", "2025-06-03", "2025-06-04", "2025-06-05", "2025-06-06",
		"2025-06-09", "2025-06-10", "2025-06-11",
	})
	if s.Anchor() != "2025-06-11" || !s.IsDragging() {
		t.Errorf("Anchor() = %q, IsDragging() = %v", s.Anchor(), s.IsDragging())
	}
}

func TestExtend_WithoutSelectionActsAsPlain(t *testing.T) {
	s := New(workingDays())

	s.PointerDown("2025-06-05", true)
	assertSelected(t, s, []string{"2025-06-05"})
}

func TestExtend_UnknownKeyKeepsSelection(t *testing.T) {
	s := New(workingDays())

	s.PointerDown("2025-06-02", false)
	s.PointerUp()

	s.PointerDown("2025-06-08", true)
	assertSelected(t, s, []string{"2025-06-02"})
}

func TestClear(t *testing.T) {
	s := New(workingDays())

	s.PointerDown("2025-06-02", false)
	s.PointerEnter("2025-06-05")
	s.Clear()
	assertSelected(t, s, nil)
	if !s.IsDragging() {
		t.Error("Clear не должен завершать протягивание")
	}

	s.PointerUp()
	s.PointerDown("2025-06-03", false)
	s.PointerUp()
	s.Clear()
	assertSelected(t, s, nil)
	if s.IsSelected("2025-06-03") {
		t.Error("IsSelected после Clear = true")
	}
}

func TestSelectionIsContiguous(t *testing.T) {
	days := workingDays()
	s := New(days)

	for a := range days {
		for b := range days {
			s.PointerDown(days[a], false)
			s.PointerEnter(days[b])
			s.PointerUp()

			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			assertSelected(t, s, days[lo:hi+1])
		}
	}
}

func TestSetSelectable_CopiesInput(t *testing.T) {
	days := workingDays()
	s := New(days)
	days[1] = "2099-01-01"

	s.PointerDown("2025-06-02", false)
	s.PointerEnter("2025-06-03")
	assertSelected(t, s, []string{"2025-06-02", "2025-06-03"})
}

func TestRestore(t *testing.T) {
	s := New(workingDays())

	// Суббота 07.06 не выбирается и отбрасывается
	s.Restore([]string{"2025-06-03", "2025-06-07", "2025-06-02"}, "")
	assertSelected(t, s, []string{"2025-06-02", "2025-06-03"})
	if s.IsDragging() {
		t.Error("без якоря протягивания быть не должно")
	}

	s.Restore(nil, "2025-06-09")
	if !s.IsDragging() || s.Anchor() != "2025-06-09" {
		t.Fatalf("IsDragging() = %v, Anchor() = %q", s.IsDragging(), s.Anchor())
	}
	s.PointerEnter("2025-06-11")
	s.PointerUp()
	assertSelected(t, s, []string{"2025-06-09", "2025-06-10", "2025-06-11"})

	s.Restore([]string{"2025-06-02"}, "2025-06-08")
	if s.IsDragging() {
		t.Error("якорь на выходном не должен начинать протягивание")
	}
	if s.Selectable("2025-06-08") || !s.Selectable("2025-06-13") {
		t.Error("Selectable: неверное индексное пространство")
	}
}
