package session

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/camwire/camclient/internal/metrics"
	"github.com/camwire/camclient/internal/proto"
)

// steadyState is the single cooperative loop: keep-alive on a 2s cadence,
// receive with a 100ms deadline, dispatch on timeout-or-receipt. No inner
// parallelism; every blocking call below is a deliberate suspension point.
func (s *Session) steadyState(ctx context.Context) error {
	lastKeepAlive := time.Time{}
	buf := make([]byte, 8192)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if lastKeepAlive.IsZero() || time.Since(lastKeepAlive) > keepAliveInterval {
			if err := s.sendKeepAliveBatch(); err != nil {
				return err
			}
			lastKeepAlive = time.Now()
		}

		_ = s.conn.SetReadDeadline(time.Now().Add(recvDeadline))
		n, err := s.conn.Read(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrSend, err)
		}
		metrics.IncDatagramsRx()
		s.dispatch(buf[:n])
	}
}

// sendKeepAliveBatch sends Heartbeat, Heartbeat, AudioKick, AudioKick in
// order; each message is duplicated deliberately since the protocol has no
// acknowledgement and datagrams are observed dropped near the device.
func (s *Session) sendKeepAliveBatch() error {
	msgs := [][]byte{
		proto.EncodeHeartbeat(),
		proto.EncodeHeartbeat(),
		proto.EncodeAudioKick(),
		proto.EncodeAudioKick(),
	}
	for _, m := range msgs {
		if _, err := s.conn.Write(m); err != nil {
			return fmt.Errorf("%w: %v", ErrSend, err)
		}
	}
	metrics.AddDatagramsTx(len(msgs))
	return nil
}

// dispatch decodes the header of a received datagram and routes it. Any
// decode or dispatch failure is a protocol anomaly: logged and ignored,
// never fatal.
func (s *Session) dispatch(datagram []byte) {
	h, err := proto.DecodeHeader(datagram)
	if err != nil {
		s.logAnomaly(proto.Header{}, datagram, err)
		return
	}

	switch {
	case h.Version() == 1 && h.Cmd == proto.CmdPortResponse:
		// Late/duplicate PortResponse after handshake: silently ignore.
	case h.Version() == 2 && h.Cmd == proto.CmdMediaFrame:
		s.handleMediaFrame(h, datagram)
	default:
		s.logAnomaly(h, datagram, proto.ErrUnknownCommand)
	}
}

func (s *Session) logAnomaly(h proto.Header, datagram []byte, cause error) {
	metrics.IncAnomaly()
	if !s.anomalyLimiter.allow() {
		return
	}
	s.logger.Warn("protocol_anomaly",
		"signature", string(h.Signature[:]),
		"cmd", h.Cmd,
		"data_len", h.DataLen,
		"cause", cause,
		"hex", hex.EncodeToString(datagram),
	)
}

// handleMediaFrame implements the video/audio branch of MediaFrame
// processing described in the spec: audio is always single-fragment and
// published directly; video is reassembled, with pkt_index==0 marking a
// frame boundary that finalizes the previous frame before storing the new
// piece.
func (s *Session) handleMediaFrame(h proto.Header, datagram []byte) {
	f, raw, err := proto.DecodeMediaFrame(datagram)
	if err != nil {
		// h is the header dispatch already decoded successfully; f.Header
		// may still be its zero value on this failure path (e.g. a length
		// mismatch caught before f.Header is populated), so log the known
		// real header rather than risk blank signature/cmd fields.
		s.logAnomaly(h, datagram, err)
		return
	}
	// datagram's backing array is reused by the next Read; the payload
	// must outlive this call (stashed in the reassembler, handed to the
	// hub for async subscribers), so it is copied out here.
	payload := append([]byte(nil), raw...)

	if f.IsAudio {
		s.audioHub.Publish(payload)
		metrics.IncAudioEmitted()
		return
	}

	if f.PktIndex == 0 {
		if frame, ok := s.reassembler.Finalize(); ok {
			s.cache.set(frame)
			s.videoHub.Publish(frame)
			metrics.IncVideoEmitted()
			s.recordEmission()
		} else {
			metrics.IncVideoDropped()
			s.logger.Debug("video_frame_dropped", "frame_index", f.FrameIndex)
		}
	}
	s.reassembler.Add(int(f.PktIndex), payload)
}

// recordEmission updates the fps clock; the first completed frame after
// startup starts the clock rather than contributing a rate sample.
func (s *Session) recordEmission() {
	s.framesReceived++
	if s.streamStart.IsZero() {
		s.streamStart = time.Now()
		return
	}
	elapsed := time.Since(s.streamStart).Seconds()
	if elapsed <= 0 {
		elapsed = 1
	}
	metrics.SetStreamFPS(float64(s.framesReceived) / elapsed)
}
