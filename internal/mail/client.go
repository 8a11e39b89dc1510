package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

// Client is a connected IMAP session against the support mailbox.
// Connect failures are setup errors: the poll run must abort before any
// message is touched.
type Client struct {
	conn   *imapclient.Client
	folder string
	logger *zap.Logger
}

// Connect dials the IMAP server, authenticates and selects the
// configured folder. The caller must Close the returned client.
func Connect(cfg config.IMAPConfig, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var conn *imapclient.Client
	var err error
	if cfg.TLS {
		conn, err = imapclient.DialTLS(cfg.Addr(), nil)
	} else {
		conn, err = imapclient.DialStartTLS(cfg.Addr(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", cfg.Addr(), err)
	}

	if err := conn.Login(cfg.Username, cfg.Password).Wait(); err != nil {
		_ = conn.Logout().Wait()
		return nil, fmt.Errorf("IMAP login for %s: %w", cfg.Username, err)
	}

	if _, err := conn.Select(cfg.Folder, nil).Wait(); err != nil {
		_ = conn.Logout().Wait()
		return nil, fmt.Errorf("selecting folder %s: %w", cfg.Folder, err)
	}

	logger.Info("connected to mailbox",
		zap.String("host", cfg.Host),
		zap.String("folder", cfg.Folder))

	return &Client{conn: conn, folder: cfg.Folder, logger: logger}, nil
}

// FetchUnseen returns up to limit unseen messages received since the
// given time. No ordering is guaranteed; callers must not assume one.
func (c *Client) FetchUnseen(ctx context.Context, since time.Time, limit int) ([]RawMessage, error) {
	criteria := &imap.SearchCriteria{
		Since:   since,
		NotFlag: []imap.Flag{imap.FlagSeen},
	}

	searchData, err := c.conn.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if limit > 0 && len(uids) > limit {
		uids = uids[:limit]
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := c.conn.Fetch(imap.UIDSetNum(uids...), fetchOpts)
	defer fetchCmd.Close()

	var messages []RawMessage
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			c.logger.Warn("collecting message failed", zap.Error(err))
			continue
		}

		raw := buf.FindBodySection(bodySection)
		parsed := parseRaw(raw)
		parsed.UID = uint32(buf.UID)
		messages = append(messages, parsed)
	}

	if err := fetchCmd.Close(); err != nil {
		return messages, fmt.Errorf("fetching messages: %w", err)
	}
	return messages, nil
}

// MarkSeen flags the message so the next poll skips it.
func (c *Client) MarkSeen(ctx context.Context, uid uint32) error {
	storeCmd := c.conn.Store(imap.UIDSetNum(imap.UID(uid)), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	return storeCmd.Close()
}

// Close logs out of the IMAP session.
func (c *Client) Close() error {
	return c.conn.Logout().Wait()
}
