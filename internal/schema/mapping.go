package schema

// Mapping 规范字段 -> 上传数据中的原始表头
type Mapping struct {
	Version    int
	Columns    map[Field]string
	Duplicates map[Field][]string // 同一字段匹配到的多余表头（仅第一个生效）
	Unmapped   []string
}

// Header 返回字段对应的原始表头
func (m *Mapping) Header(field Field) (string, bool) {
	h, ok := m.Columns[field]
	return h, ok
}

// Has 字段是否存在
func (m *Mapping) Has(field Field) bool {
	_, ok := m.Columns[field]
	return ok
}

// Resolve 将上传表头匹配到规范字段
// required 中任一字段没有匹配的表头时返回 *MissingColumnError
func (s *Schema) Resolve(headers []string, required []Field) (*Mapping, error) {
	lookup := make(map[string]Field)
	for _, spec := range s.Fields {
		for _, v := range spec.Variants {
			lookup[NormalizeHeader(v)] = spec.Field
		}
	}

	m := &Mapping{
		Version:    s.Version,
		Columns:    make(map[Field]string),
		Duplicates: make(map[Field][]string),
	}
	for _, h := range headers {
		field, ok := lookup[NormalizeHeader(h)]
		if !ok {
			m.Unmapped = append(m.Unmapped, h)
			continue
		}
		if _, taken := m.Columns[field]; taken {
			m.Duplicates[field] = append(m.Duplicates[field], h)
			continue
		}
		m.Columns[field] = h
	}

	for _, field := range required {
		if !m.Has(field) {
			return nil, &MissingColumnError{Field: field, Variants: s.Variants(field)}
		}
	}
	return m, nil
}
