package wire

import "sort"

// Set 为成员唯一的集合。
//
// 成员按规范键判重，因此嵌套容器也可以充当成员。
// Members 返回插入顺序；Canonical 返回按规范键排序的确定性顺序，
// 编码器使用后者，保证同一集合在不同进程、不同运行间输出一致。
type Set struct {
	elems []Value
	index map[string]struct{}
}

// NewSet 创建一个 Set，可选地以给定成员初始化。
func NewSet(elements ...Value) *Set {
	s := &Set{
		index: make(map[string]struct{}, len(elements)),
	}
	s.Insert(elements...)
	return s
}

// Insert 将成员插入集合，已存在的成员被忽略。
func (s *Set) Insert(elements ...Value) {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	for _, el := range elements {
		ck := CanonicalKey(el)
		if _, ok := s.index[ck]; ok {
			continue
		}
		s.index[ck] = struct{}{}
		s.elems = append(s.elems, el)
	}
}

// Contains 判断成员是否存在。
func (s *Set) Contains(el Value) bool {
	if s == nil || s.index == nil {
		return false
	}
	_, ok := s.index[CanonicalKey(el)]
	return ok
}

// Len 返回成员个数。
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.elems)
}

// Members 按插入顺序返回全部成员的副本。
func (s *Set) Members() []Value {
	if s == nil {
		return nil
	}
	out := make([]Value, len(s.elems))
	copy(out, s.elems)
	return out
}

// Canonical 按规范键排序返回全部成员，供编码器产出确定性结果。
func (s *Set) Canonical() []Value {
	out := s.Members()
	sort.Slice(out, func(i, j int) bool {
		return CanonicalKey(out[i]) < CanonicalKey(out[j])
	})
	return out
}

// Range 按插入顺序遍历成员。
// 当回调返回 false 时提前终止遍历。
func (s *Set) Range(f func(el Value) bool) {
	if s == nil {
		return
	}
	for _, el := range s.elems {
		if !f(el) {
			break
		}
	}
}
