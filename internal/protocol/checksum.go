package protocol

// Checksum XORs every byte of b.
func Checksum(b []byte) byte {
	var x byte
	for _, v := range b {
		x ^= v
	}
	return x
}

// SealFrame pads body to FrameLen-1 bytes and appends the check byte that makes
// the frame XOR to FrameChecksum. Bodies longer than FrameLen-1 are truncated.
func SealFrame(body []byte) []byte {
	out := make([]byte, FrameLen)
	copy(out[:FrameLen-1], body)
	out[FrameLen-1] = Checksum(out[:FrameLen-1]) ^ FrameChecksum
	return out
}

// VerifyFrame reports whether frame is FrameLen bytes long and XORs to
// FrameChecksum.
func VerifyFrame(frame []byte) bool {
	return len(frame) == FrameLen && Checksum(frame) == FrameChecksum
}
