package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/realtime"
)

// SequenceConnector devuelve la función de conexión para realtime.Member. La sala es
// el segmento de URL del tipo (ej: "invoices"); cada evento recibido se entrega a onEvent.
func (c *Client) SequenceConnector(onEvent func(dto.SequenceEvent)) realtime.ConnectFunc {
	return func(ctx context.Context, room string) (func(), error) {
		if _, ok := entity.KindFromPath(room); !ok {
			return nil, fmt.Errorf("apiclient: sala desconocida %q", room)
		}
		streamCtx, cancel := context.WithCancel(context.Background())
		stop := context.AfterFunc(ctx, cancel)

		req, err := c.newRequest(streamCtx, http.MethodGet, "/api/sequences/"+room+"/stream", nil)
		if err != nil {
			stop()
			cancel()
			return nil, err
		}
		req.Header.Set("Accept", "text/event-stream")

		// Sin timeout: el flujo vive hasta que se sale de la sala.
		streamClient := &http.Client{Transport: c.httpClient.Transport}
		resp, err := streamClient.Do(req)
		stop()
		if err != nil {
			cancel()
			return nil, fmt.Errorf("apiclient: abrir stream: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			cancel()
			return nil, statusError(resp.StatusCode, nil)
		}

		go func() {
			defer resp.Body.Close()
			err := readEvents(bufio.NewScanner(resp.Body), func(data string) {
				var ev dto.SequenceEvent
				if err := json.Unmarshal([]byte(data), &ev); err != nil {
					c.log.Warn().Err(err).Str("room", room).Msg("evento ilegible")
					return
				}
				onEvent(ev)
			})
			if err != nil && streamCtx.Err() == nil {
				c.log.Warn().Err(err).Str("room", room).Msg("stream interrumpido")
			}
		}()
		return cancel, nil
	}
}

// readEvents interpreta un flujo text/event-stream y entrega el campo data de cada evento.
// Las líneas de comentario (": ping") se ignoran.
func readEvents(sc *bufio.Scanner, dispatch func(data string)) error {
	var data []string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				dispatch(strings.Join(data, "\n"))
				data = data[:0]
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	return sc.Err()
}
