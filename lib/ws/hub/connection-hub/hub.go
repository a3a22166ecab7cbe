package connectionhub

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"

	"assessment-tools-backend/db"
	pushdatastore "assessment-tools-backend/lib/ws/push-data-store"
	dbmodels "assessment-tools-backend/models/db"
	wsmodels "assessment-tools-backend/models/ws"
)

type Provider interface {
	AddClient(userID string, conn *websocket.Conn)
	DeleteClient(userID string)
	// SendOrQueue доставляет событие подключенному рекрутеру,
	// для офлайн-рекрутера событие откладывается в БД до подключения
	SendOrQueue(msg wsmodels.ServerMessage)
	IsConnected(userID string) bool
}

var Instance Provider

func Init() {
	Instance = &impl{
		clients: map[string]clientSession{},
		store:   pushdatastore.NewInstance(db.DB),
	}
}

type impl struct {
	mu      sync.Mutex
	clients map[string]clientSession //map[userID]
	store   pushdatastore.Provider
}

func (i *impl) DeleteClient(userID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	sess, ok := i.clients[userID]
	if !ok {
		return
	}
	delete(i.clients, userID)
	sess.stop()
	close(sess.sendCh)
}

func (i *impl) AddClient(userID string, conn *websocket.Conn) {
	i.mu.Lock()
	oldSess, ok := i.clients[userID]
	if ok {
		oldSess.stop()
	}
	i.clients[userID] = newSession(conn)
	i.mu.Unlock()
	go i.sendDelayedMessages(userID)
}

func (i *impl) SendOrQueue(msg wsmodels.ServerMessage) {
	// отправка в канал под мьютексом: DeleteClient закрывает канал под ним же,
	// поэтому запись в закрытый канал исключена
	i.mu.Lock()
	sess, ok := i.clients[msg.ToUserID]
	if ok {
		select {
		case sess.sendCh <- msg:
			i.mu.Unlock()
			return
		default:
			// буфер клиента занят, событие откладывается в БД
		}
	}
	i.mu.Unlock()
	err := i.store.Create(dbmodels.PushData{
		UserID: msg.ToUserID,
		Code:   msg.Code,
		Msg:    msg.Msg,
	})
	if err != nil {
		log.WithField("user_id", msg.ToUserID).WithError(err).Error("ошибка сохранения отложенного события")
	}
}

func (i *impl) IsConnected(userID string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	sess, ok := i.clients[userID]
	if !ok || sess.conn == nil || sess.conn.Conn == nil {
		return false
	}
	return true
}

func (i *impl) sendDelayedMessages(userID string) {
	logger := log.WithField("user_id", userID)
	list, err := i.store.List(userID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения списка не отправленных событий")
		return
	}
	sendedIDs := []string{}
	for _, item := range list {
		if i.IsConnected(userID) {
			msg := wsmodels.ServerMessage{
				ToUserID: userID,
				Time:     item.CreatedAt.Format("02.01.2006 15:04:05"),
				Code:     item.Code,
				Msg:      item.Msg,
			}
			i.mu.Lock()
			sess, ok := i.clients[userID]
			if ok {
				select {
				case sess.sendCh <- msg:
					sendedIDs = append(sendedIDs, item.ID)
				default:
					// буфер занят, событие остается отложенным
				}
			}
			i.mu.Unlock()
		}
	}
	if len(sendedIDs) > 0 {
		err = i.store.Delete(sendedIDs)
		if err != nil {
			logger.WithError(err).Error("ошибка удаления отправленных событий")
			return
		}
	}
}
