package audio

import (
	"encoding/binary"
	"math"
	"os"
)

// Beep parameters: a short 880 Hz sine tone acknowledging a voice trigger.
const (
	beepSampleRate = 16000
	beepFreqHz     = 880
	beepDuration   = 0.15
	beepAmplitude  = 24000
)

// WriteBeepWAV renders the trigger beep as a 16-bit mono WAV file at path.
func WriteBeepWAV(path string) error {
	n := int(beepSampleRate * beepDuration)
	pcm := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		sample := int16(beepAmplitude * math.Sin(2*math.Pi*beepFreqHz*float64(i)/beepSampleRate))
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(sample))
	}
	return os.WriteFile(path, wavBytes(pcm, beepSampleRate, 1), 0o600)
}

// wavBytes wraps raw 16-bit PCM samples in a minimal RIFF/WAVE header.
func wavBytes(pcm []byte, sampleRate, channels int) []byte {
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2

	out := make([]byte, 0, 44+len(pcm))
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+len(pcm)))
	out = append(out, "WAVE"...)
	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, 1) // PCM
	out = binary.LittleEndian.AppendUint16(out, uint16(channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(byteRate))
	out = binary.LittleEndian.AppendUint16(out, uint16(blockAlign))
	out = binary.LittleEndian.AppendUint16(out, 16) // bits per sample
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(pcm)))
	out = append(out, pcm...)
	return out
}
