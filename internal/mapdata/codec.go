package mapdata

// ValueCodec переводит значения вокселей в строковые идентификаторы хранения и обратно.
// Empty возвращает пустое значение, которым заполнены незаписанные ячейки.
type ValueCodec[V comparable] interface {
	Encode(value V) (string, error)
	Decode(id string) (V, error)
	Empty() V
}

// StringCodec тривиальный кодек для строковых значений
type StringCodec struct {
	EmptyValue string
}

func (c StringCodec) Encode(value string) (string, error) { return value, nil }
func (c StringCodec) Decode(id string) (string, error)    { return id, nil }
func (c StringCodec) Empty() string                       { return c.EmptyValue }
