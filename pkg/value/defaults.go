package value

// DefaultForKind returns the placeholder used when a property of the given
// kind is added to a context without an explicit value.
func DefaultForKind(k Kind) Value {
	switch k {
	case KindString:
		return String("sample text")
	case KindNumber:
		return intNumber(0)
	case KindBool:
		return Bool(true)
	case KindObject:
		return ObjectOf(Field{Key: "example", Value: String("data")})
	case KindArray:
		return Array{intNumber(1), intNumber(2), intNumber(3)}
	default:
		return Null{}
	}
}
