// Пакет dragselect — конечный автомат выделения диапазона дат
// протягиванием указателя по сетке планировщика.
//
// Состояния: ожидание и протягивание. Индексное пространство задаётся
// извне (SetSelectable) упорядоченным списком выбираемых дат; нерабочие
// дни в него не входят, поэтому диапазон охватывает только рабочие дни.
//
// Selector не безопасен для конкурентного использования: события
// указателя доставляются последовательно одним циклом событий.
package dragselect

import "sort"

// Selector хранит выделение и состояние протягивания.
type Selector struct {
	selectable []string
	index      map[string]int

	selected map[string]struct{}
	anchor   string
	dragging bool
}

// New создаёт Selector с заданным индексным пространством.
func New(selectable []string) *Selector {
	s := &Selector{selected: make(map[string]struct{})}
	s.SetSelectable(selectable)
	return s
}

// SetSelectable заменяет упорядоченный список выбираемых дат.
// Текущее выделение не меняется.
func (s *Selector) SetSelectable(keys []string) {
	s.selectable = append(s.selectable[:0:0], keys...)
	s.index = make(map[string]int, len(keys))
	for i, k := range keys {
		if _, dup := s.index[k]; !dup {
			s.index[k] = i
		}
	}
}

// Restore восстанавливает выделение и, при непустом anchor, протягивание
// от anchor. Невыбираемые даты отбрасываются; якорь вне индексного
// пространства означает состояние ожидания.
func (s *Selector) Restore(selected []string, anchor string) {
	s.selected = make(map[string]struct{}, len(selected))
	for _, k := range selected {
		if _, ok := s.index[k]; ok {
			s.selected[k] = struct{}{}
		}
	}
	s.anchor = ""
	s.dragging = false
	if _, ok := s.index[anchor]; ok {
		s.anchor = anchor
		s.dragging = true
	}
}

// Selectable проверяет, входит ли дата в индексное пространство.
func (s *Selector) Selectable(key string) bool {
	_, ok := s.index[key]
	return ok
}

// PointerDown начинает протягивание с даты key.
//
// При extend и непустом выделении к нему добавляется непрерывный диапазон
// от наибольшей выбранной даты до key. Иначе выделение сворачивается
// до {key}. В обоих случаях якорем становится key.
func (s *Selector) PointerDown(key string, extend bool) {
	if extend && len(s.selected) > 0 {
		last := s.greatestSelected()
		s.addRange(last, key)
	} else {
		s.selected = map[string]struct{}{key: {}}
	}
	s.anchor = key
	s.dragging = true
}

// PointerEnter пересчитывает выделение как диапазон между якорем и key.
// Вне протягивания или для невыбираемых дат ничего не делает.
func (s *Selector) PointerEnter(key string) {
	if !s.dragging {
		return
	}
	lo, hi, ok := s.bounds(s.anchor, key)
	if !ok {
		return
	}
	s.selected = make(map[string]struct{}, hi-lo+1)
	for i := lo; i <= hi; i++ {
		s.selected[s.selectable[i]] = struct{}{}
	}
}

// PointerUp завершает протягивание. Выделение сохраняется.
func (s *Selector) PointerUp() {
	s.dragging = false
	s.anchor = ""
}

// Clear сбрасывает выделение в любом состоянии.
func (s *Selector) Clear() {
	s.selected = make(map[string]struct{})
}

// Selected возвращает выбранные даты по возрастанию.
func (s *Selector) Selected() []string {
	keys := make([]string, 0, len(s.selected))
	for k := range s.selected {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSelected проверяет, выбрана ли дата.
func (s *Selector) IsSelected(key string) bool {
	_, ok := s.selected[key]
	return ok
}

// IsDragging — идёт ли протягивание.
func (s *Selector) IsDragging() bool {
	return s.dragging
}

// Anchor возвращает якорь протягивания; пустая строка вне протягивания.
func (s *Selector) Anchor() string {
	return s.anchor
}

// greatestSelected — лексикографически наибольший ключ выделения.
func (s *Selector) greatestSelected() string {
	var last string
	for k := range s.selected {
		if k > last {
			last = k
		}
	}
	return last
}

// addRange добавляет в выделение диапазон индексов между a и b.
func (s *Selector) addRange(a, b string) {
	lo, hi, ok := s.bounds(a, b)
	if !ok {
		return
	}
	for i := lo; i <= hi; i++ {
		s.selected[s.selectable[i]] = struct{}{}
	}
}

func (s *Selector) bounds(a, b string) (lo, hi int, ok bool) {
	ia, okA := s.index[a]
	ib, okB := s.index[b]
	if !okA || !okB {
		return 0, 0, false
	}
	if ia > ib {
		ia, ib = ib, ia
	}
	return ia, ib, true
}
