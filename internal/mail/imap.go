package mail

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"

	"github.com/Rishikarathore0601/rfp/internal/config"
	"github.com/Rishikarathore0601/rfp/internal/logger"
)

func init() {
	// Письма приходят в произвольных кодировках, декодер нужен глобально.
	imap.CharsetReader = charset.Reader
}

// Message — входящее письмо, уже разобранное до полей, нужных сверке ящика.
type Message struct {
	UID         uint32
	FromAddress string
	FromName    string
	Subject     string
	Body        string
}

// Mailbox — IMAP-сессия к входящему ящику. Не потокобезопасна:
// одна сессия обслуживает один проход сверки.
type Mailbox struct {
	c *client.Client
}

// DialMailbox открывает TLS-соединение с IMAP-сервером и проходит аутентификацию.
func DialMailbox(cfg *config.Config) (*Mailbox, error) {
	addr := cfg.IMAPHost + ":" + cfg.IMAPPort

	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("mail: подключение к imap %w", err)
	}

	if err := c.Login(cfg.EmailUser, cfg.EmailAppPassword); err != nil {
		c.Logout()
		return nil, fmt.Errorf("mail: вход в ящик %w", err)
	}

	return &Mailbox{c: c}, nil
}

// ListUnseen возвращает непрочитанные письма из INBOX, отфильтрованные
// по подстроке темы. Письма не помечаются прочитанными: это делает
// вызывающий код после успешной обработки.
func (m *Mailbox) ListUnseen(subjectFilter string) ([]Message, error) {
	if _, err := m.c.Select("INBOX", false); err != nil {
		return nil, fmt.Errorf("mail: выбор inbox %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if subjectFilter != "" {
		criteria.Header.Add("Subject", subjectFilter)
	}

	uids, err := m.c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("mail: поиск непрочитанных %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchEnvelope, imap.FetchUid}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- m.c.UidFetch(seqset, items, messages)
	}()

	var result []Message
	for msg := range messages {
		parsed, err := parseMessage(msg, section)
		if err != nil {
			if logger.Log != nil {
				logger.Log.WithError(err).WithField("uid", msg.Uid).Warn("mail: письмо не разобрано, пропускаем")
			}
			continue
		}
		result = append(result, parsed)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("mail: выборка писем %w", err)
	}

	return result, nil
}

// MarkSeen помечает письмо прочитанным, выводя его из последующих проходов.
func (m *Mailbox) MarkSeen(uid uint32) error {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}
	if err := m.c.UidStore(seqset, item, flags, nil); err != nil {
		return fmt.Errorf("mail: пометка прочитанным %w", err)
	}

	return nil
}

// Close завершает IMAP-сессию.
func (m *Mailbox) Close() error {
	return m.c.Logout()
}

// parseMessage извлекает отправителя, тему и текст письма.
// Предпочитается text/plain; HTML-часть используется как запасной
// вариант и приводится к тексту.
func parseMessage(msg *imap.Message, section *imap.BodySectionName) (Message, error) {
	result := Message{UID: msg.Uid}

	if msg.Envelope != nil {
		result.Subject = msg.Envelope.Subject
		if len(msg.Envelope.From) > 0 {
			from := msg.Envelope.From[0]
			result.FromName = from.PersonalName
			result.FromAddress = from.MailboxName + "@" + from.HostName
		}
	}

	body := msg.GetBody(section)
	if body == nil {
		return result, fmt.Errorf("тело письма отсутствует")
	}

	mr, err := gomail.CreateReader(body)
	if err != nil {
		return result, fmt.Errorf("разбор mime: %w", err)
	}

	if subject, err := mr.Header.Subject(); err == nil && subject != "" {
		result.Subject = subject
	}
	if addrs, err := mr.Header.AddressList("From"); err == nil && len(addrs) > 0 {
		result.FromName = addrs[0].Name
		result.FromAddress = addrs[0].Address
	}

	var plainText, htmlText string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("чтение части письма: %w", err)
		}

		h, ok := p.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, err := h.ContentType()
		if err != nil {
			continue
		}

		raw, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") && plainText == "":
			plainText = string(raw)
		case strings.HasPrefix(contentType, "text/html") && htmlText == "":
			htmlText = string(raw)
		}
	}

	switch {
	case plainText != "":
		result.Body = plainText
	case htmlText != "":
		result.Body = StripHTML(htmlText)
	}

	return result, nil
}
