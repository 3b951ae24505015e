package ticker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
	"github.com/shopspring/decimal"

	"bookfeed/logger"
)

const okxPublicWS = "wss://ws.okx.com:8443/ws/v5/public"

// streamOKX holds one connection subscribed to the tickers channel for every
// configured instrument. OKX closes idle connections after 30 seconds, so a
// ping goes out every 20.
func (s *Stream) streamOKX(ctx context.Context, instruments []string) {
	defer s.wg.Done()
	log := s.log.WithComponent("ticker").WithFields(logger.Fields{"exchange": "okx", "instruments": instruments})

	b := &backoff.Backoff{Min: time.Second, Max: 30 * time.Second, Jitter: true}
	for ctx.Err() == nil {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, okxPublicWS, nil)
		if err != nil {
			log.WithError(err).Warn("failed to connect, retrying")
			select {
			case <-time.After(b.Duration()):
				continue
			case <-ctx.Done():
				return
			}
		}
		b.Reset()

		args := make([]map[string]string, 0, len(instruments))
		for _, inst := range instruments {
			args = append(args, map[string]string{"channel": "tickers", "instId": inst})
		}
		if err := conn.WriteJSON(map[string]interface{}{"op": "subscribe", "args": args}); err != nil {
			log.WithError(err).Warn("failed to subscribe")
			conn.Close()
			continue
		}

		done := make(chan struct{})
		go func() {
			ping := time.NewTicker(20 * time.Second)
			defer ping.Stop()
			for {
				select {
				case <-done:
					return
				case <-ctx.Done():
					conn.Close()
					return
				case <-ping.C:
					conn.WriteMessage(websocket.TextMessage, []byte("ping"))
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				close(done)
				conn.Close()
				if ctx.Err() != nil {
					return
				}
				log.WithError(err).Warn("websocket read error, reconnecting")
				break
			}
			for _, p := range parseOKXTickers(msg) {
				s.publish(p)
			}
		}
	}
}

type okxTickerFrame struct {
	Event string `json:"event"`
	Arg   struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Data []struct {
		InstID string `json:"instId"`
		Last   string `json:"last"`
		TS     string `json:"ts"`
	} `json:"data"`
}

// parseOKXTickers extracts price updates from one frame; subscription acks,
// pongs and unparseable rows yield nothing.
func parseOKXTickers(msg []byte) []Price {
	if string(msg) == "pong" {
		return nil
	}
	var frame okxTickerFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		return nil
	}
	if frame.Event != "" || frame.Arg.Channel != "tickers" {
		return nil
	}
	out := make([]Price, 0, len(frame.Data))
	for _, d := range frame.Data {
		last, err := decimal.NewFromString(d.Last)
		if err != nil {
			continue
		}
		at := time.Now().UTC()
		if ms, err := json.Number(d.TS).Int64(); err == nil && ms > 0 {
			at = time.UnixMilli(ms).UTC()
		}
		out = append(out, Price{Exchange: "okx", Symbol: d.InstID, Last: last, At: at})
	}
	return out
}
