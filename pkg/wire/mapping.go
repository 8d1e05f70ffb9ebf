package wire

// Mapping 为保持插入顺序的键值映射。
//
// 编码时按插入顺序输出；解码来源若本身无序（例如原生 Go map），
// 顺序不做任何保证。键按规范键（canonical key）判重，
// 因此序列、映射等非 comparable 值也可以作为键。
type Mapping struct {
	pairs []Pair
	index map[string]int
}

// NewMapping 创建一个 Mapping，可选地以给定键值对初始化。
func NewMapping(pairs ...Pair) *Mapping {
	m := &Mapping{
		index: make(map[string]int, len(pairs)),
	}
	for _, p := range pairs {
		m.Put(p.Key, p.Value)
	}
	return m
}

// Put 插入或更新一个键值对，返回 m 本身以便链式调用。
// 更新已存在的键会保留其原有位置。
func (m *Mapping) Put(k, v Value) *Mapping {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	ck := CanonicalKey(k)
	if at, ok := m.index[ck]; ok {
		m.pairs[at].Value = v
		return m
	}
	m.index[ck] = len(m.pairs)
	m.pairs = append(m.pairs, Pair{Key: k, Value: v})
	return m
}

// Get 返回键对应的值；第二个返回值表示键是否存在。
func (m *Mapping) Get(k Value) (Value, bool) {
	if m == nil || m.index == nil {
		return nil, false
	}
	at, ok := m.index[CanonicalKey(k)]
	if !ok {
		return nil, false
	}
	return m.pairs[at].Value, true
}

// Len 返回键值对数量。
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.pairs)
}

// Pairs 按插入顺序返回全部键值对的副本。
func (m *Mapping) Pairs() []Pair {
	if m == nil {
		return nil
	}
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

// Range 按插入顺序遍历键值对。
// 当回调返回 false 时提前终止遍历。
func (m *Mapping) Range(f func(k, v Value) bool) {
	if m == nil {
		return
	}
	for _, p := range m.pairs {
		if !f(p.Key, p.Value) {
			break
		}
	}
}
