package ticker

import (
	"context"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/jpillora/backoff"
	"github.com/shopspring/decimal"

	"bookfeed/logger"
)

// streamBinance keeps a 24h market stat subscription alive for one symbol,
// reconnecting with backoff whenever the library's done channel closes.
func (s *Stream) streamBinance(ctx context.Context, symbol string) {
	defer s.wg.Done()
	log := s.log.WithComponent("ticker").WithFields(logger.Fields{"exchange": "binance", "symbol": symbol})

	handler := func(event *binance.WsMarketStatEvent) {
		last, err := decimal.NewFromString(event.LastPrice)
		if err != nil {
			log.WithError(err).Debug("unparseable last price")
			return
		}
		s.publish(Price{Exchange: "binance", Symbol: event.Symbol, Last: last, At: time.Now().UTC()})
	}
	errHandler := func(err error) {
		if err != nil {
			log.WithError(err).Warn("websocket error")
		}
	}

	b := &backoff.Backoff{Min: time.Second, Max: 30 * time.Second, Jitter: true}
	for ctx.Err() == nil {
		doneC, stopC, err := binance.WsMarketStatServe(symbol, handler, errHandler)
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

		select {
		case <-ctx.Done():
			close(stopC)
			<-doneC
			return
		case <-doneC:
			log.Warn("stream closed, reconnecting")
		}
	}
}
