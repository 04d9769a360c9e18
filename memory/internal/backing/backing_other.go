//go:build !unix

package backing

func mapRegion(size int) ([]byte, error) {
	return nil, ErrOffHeapUnsupported
}

func unmapRegion(data []byte) error {
	return ErrOffHeapUnsupported
}
