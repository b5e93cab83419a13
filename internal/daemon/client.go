package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
)

// Client is a TaskRepository backed by a running daemon
type Client struct {
	socketPath string
	dialer     net.Dialer
}

// NewClient creates a new daemon client
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// sendRequest sends a request to the daemon and returns the response
func (c *Client) sendRequest(ctx context.Context, req *Request) (*Response, error) {
	conn, err := c.dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !resp.Success {
		if resp.Code == CodeNotFound {
			return nil, fmt.Errorf("daemon: %s: %w", resp.Error, entity.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// Push stores a new record through the daemon
func (c *Client) Push(ctx context.Context, userID string, fields repository.Fields) (string, error) {
	set, _ := fields.Split()
	resp, err := c.sendRequest(ctx, &Request{
		Type:    RequestPush,
		Payload: PushPayload{UserID: userID, Fields: set},
	})
	if err != nil {
		return "", err
	}

	var result PushResult
	if err := decodePayload(resp.Data, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// Update merges fields into a record through the daemon
func (c *Client) Update(ctx context.Context, userID, taskID string, fields repository.Fields) error {
	_, err := c.sendRequest(ctx, &Request{
		Type:    RequestUpdate,
		Payload: toUpdatePayload(userID, taskID, fields),
	})
	return err
}

// Remove deletes a record through the daemon
func (c *Client) Remove(ctx context.Context, userID, taskID string) error {
	_, err := c.sendRequest(ctx, &Request{
		Type:    RequestRemove,
		Payload: TaskPayload{UserID: userID, TaskID: taskID},
	})
	return err
}

// Get fetches a single record through the daemon
func (c *Client) Get(ctx context.Context, userID, taskID string) (repository.Fields, error) {
	resp, err := c.sendRequest(ctx, &Request{
		Type:    RequestGet,
		Payload: TaskPayload{UserID: userID, TaskID: taskID},
	})
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := decodePayload(resp.Data, &rec); err != nil {
		return nil, err
	}
	return fromWireRecords([]Record{rec})[0].Fields, nil
}

// List fetches every record of a user through the daemon
func (c *Client) List(ctx context.Context, userID string) ([]repository.Record, error) {
	resp, err := c.sendRequest(ctx, &Request{
		Type:    RequestList,
		Payload: UserPayload{UserID: userID},
	})
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := decodePayload(resp.Data, &records); err != nil {
		return nil, err
	}
	return fromWireRecords(records), nil
}

// Watch holds a subscription connection open and relays pushed snapshots
func (c *Client) Watch(ctx context.Context, userID string) (<-chan repository.Snapshot, error) {
	conn, err := c.dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}

	encoder := json.NewEncoder(conn)
	decoder := json.NewDecoder(conn)

	if err := encoder.Encode(&Request{Type: RequestSubscribe, Payload: UserPayload{UserID: userID}}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send subscribe request: %w", err)
	}
	var resp Response
	if err := decoder.Decode(&resp); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !resp.Success {
		conn.Close()
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	out := make(chan repository.Snapshot, 1)
	stop := context.AfterFunc(ctx, func() {
		encoder.Encode(&Request{Type: RequestUnsubscribe})
		conn.Close()
	})

	go func() {
		defer close(out)
		defer func() {
			stop()
			conn.Close()
		}()

		for {
			var n Notification
			if err := decoder.Decode(&n); err != nil {
				if ctx.Err() == nil {
					select {
					case out <- repository.Snapshot{UserID: userID, Err: fmt.Errorf("daemon subscription lost: %w", err)}:
					case <-ctx.Done():
					}
				}
				return
			}
			if n.Type != NotificationSnapshot {
				continue
			}

			snap := repository.Snapshot{UserID: n.UserID, Records: fromWireRecords(n.Records)}
			if n.Error != "" {
				snap.Records = nil
				snap.Err = fmt.Errorf("daemon: %s", n.Error)
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Ping checks if the daemon is running and responding
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.sendRequest(ctx, &Request{Type: RequestPing})
	return err
}
