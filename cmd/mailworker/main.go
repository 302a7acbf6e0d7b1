package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/interviewhub/interviewhub-api/config"
	"github.com/interviewhub/interviewhub-api/pkg/helpers"
	"github.com/interviewhub/interviewhub-api/pkg/mailer"
	"github.com/interviewhub/interviewhub-api/pkg/mailer/templates"
)

const geoCacheTTL = 24 * time.Hour

// cachedGeoResolver caches ip-api lookups in redis so repeated logins
// from the same address do not hammer the upstream service.
type cachedGeoResolver struct {
	rdb  *redis.Client
	next templates.GeoResolver
}

func (r cachedGeoResolver) Lookup(ctx context.Context, ip string) (templates.Geo, error) {
	key := "geo:" + ip
	if r.rdb != nil {
		var g templates.Geo
		if ok, err := helpers.RedisGetJSON(ctx, r.rdb, key, &g); err == nil && ok {
			return g, nil
		}
	}
	g, err := r.next.Lookup(ctx, ip)
	if err != nil {
		return templates.Geo{}, err
	}
	if r.rdb != nil {
		_ = helpers.RedisSetJSON(ctx, r.rdb, key, g, geoCacheTTL)
	}
	return g, nil
}

type worker struct {
	mg     *mailer.Mailgun
	geo    templates.GeoResolver
	logger *logrus.Logger
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-mailworker", cfg.Env)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("failed to open channel: %v", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(cfg.RabbitMQEmailQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("failed to declare queue: %v", err)
	}
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("failed to set qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("failed to start consumer: %v", err)
	}

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable, geo lookups uncached")
		rdb = nil
	}

	w := &worker{
		mg:     mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender),
		geo:    cachedGeoResolver{rdb: rdb, next: templates.IPAPIResolver{}},
		logger: logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("mail worker consuming queue %q", cfg.RabbitMQEmailQueue)
	for {
		select {
		case <-ctx.Done():
			logger.Info("mail worker shutting down")
			return
		case d, ok := <-msgs:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			w.handle(ctx, d)
		}
	}
}

func (w *worker) handle(ctx context.Context, d amqp.Delivery) {
	var job mailer.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.logger.WithError(err).Error("malformed email job, dropping")
		_ = d.Nack(false, false)
		return
	}

	subject, text, html, err := w.render(ctx, job)
	if err != nil {
		w.logger.WithError(err).WithField("template", job.Template).Error("render failed, dropping")
		_ = d.Nack(false, false)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := w.mg.Send(sendCtx, job.To, subject, text, html); err != nil {
		w.logger.WithError(err).WithField("to", job.To).Error("send failed, requeueing")
		_ = d.Nack(false, true)
		return
	}

	w.logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	_ = d.Ack(false)
}

// render resolves the job into a concrete subject/text/html triple. Templated
// jobs get a geo-enriched Location when the publisher only supplied an IP.
func (w *worker) render(ctx context.Context, job mailer.EmailJob) (subject, text, html string, err error) {
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}

	data := job.Data
	if data == nil {
		data = map[string]any{}
	}
	if loc, _ := data["Location"].(string); loc == "" {
		if ip, _ := data["IP"].(string); ip != "" {
			geoCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			g, gerr := w.geo.Lookup(geoCtx, ip)
			cancel()
			if gerr == nil {
				data["Location"] = templates.FormatGeo(g)
			}
		}
	}

	subject, text, html, err = templates.Render(job.Template, data)
	if err != nil {
		return "", "", "", err
	}
	if job.Subject != "" {
		subject = job.Subject
	}
	if subject == "" {
		subject = templates.SubjectFor(job.Template)
	}
	return subject, text, html, nil
}
