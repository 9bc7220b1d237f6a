package bitvec

// mergeShifted appends src into dst starting shift bits into dst[0], MSB first.
// The top shift bits of dst[0] are kept, the rest of the written span is
// overwritten. For shift > 0 the last source byte spills its low shift bits
// into dst[len(src)], so dst must hold len(src)+1 bytes.
func mergeShifted(dst, src []byte, shift uint) {
	if shift == 0 {
		copy(dst, src)
		return
	}

	keep := byte(0xff) << (8 - shift)
	for i, b := range src {
		dst[i] = dst[i]&keep | b>>shift
		dst[i+1] = b << (8 - shift)
	}
}
