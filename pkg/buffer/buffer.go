package buffer

// UniqueList keeps values in insertion order and drops repeats.
type UniqueList[T comparable] struct {
	data []T
	set  map[T]struct{}
}

func NewUniqueList[T comparable](capacity int) *UniqueList[T] {
	return &UniqueList[T]{
		data: make([]T, 0, capacity),
		set:  make(map[T]struct{}, capacity),
	}
}

func (ul *UniqueList[T]) AddIfNotExists(value T) bool {
	if _, ok := ul.set[value]; ok {
		return false
	}

	ul.data = append(ul.data, value)
	ul.set[value] = struct{}{}
	return true
}

func (ul *UniqueList[T]) Len() int {
	return len(ul.data)
}

// Values returns the backing slice; callers must not modify it.
func (ul *UniqueList[T]) Values() []T {
	return ul.data
}
