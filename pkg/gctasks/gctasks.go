package gctasks

import (
	"context"
	"fmt"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	"cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Client schedules HTTP callback tasks on Google Cloud Tasks. Deferred tasks
// drive the download-window expiry callbacks.
type Client interface {
	CreateQueue(id string) error
	CreateTask(queueID string, request Request) error
	DeferCreateTaskInDuration(queueID string, request Request, duration time.Duration) error
	DeferCreateTaskInTime(queueID string, request Request, schedule time.Time) error
	Close() error
}

type Request struct {
	URL    string
	Method cloudtaskspb.HttpMethod
	Header map[string]string
	Body   []byte
}

type tasksClientImpl struct {
	projectID  string
	locationID string
	logger     *logrus.Logger
	client     *cloudtasks.Client
}

func NewGCTasks(logger *logrus.Logger, projectID, locationID string, credsJSON []byte) Client {
	c, err := cloudtasks.NewClient(context.Background(), option.WithCredentialsJSON(credsJSON))
	if err != nil {
		logger.WithField("object", "gctasks").Error(err)
		return nil
	}

	return &tasksClientImpl{
		projectID:  projectID,
		locationID: locationID,
		logger:     logger,
		client:     c,
	}
}

func (tc *tasksClientImpl) Close() error {
	return tc.client.Close()
}

func (tc *tasksClientImpl) queuePath(queueID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/queues/%s", tc.projectID, tc.locationID, queueID)
}

func buildTask(request Request, schedule *time.Time) *cloudtaskspb.Task {
	task := &cloudtaskspb.Task{
		MessageType: &cloudtaskspb.Task_HttpRequest{
			HttpRequest: &cloudtaskspb.HttpRequest{
				Url:        request.URL,
				HttpMethod: request.Method,
				Headers:    request.Header,
				Body:       request.Body,
			},
		},
	}

	if schedule != nil {
		task.ScheduleTime = &timestamppb.Timestamp{Seconds: schedule.Unix()}
	}

	return task
}

func (tc *tasksClientImpl) CreateQueue(id string) error {
	parent := fmt.Sprintf("projects/%s/locations/%s", tc.projectID, tc.locationID)

	_, err := tc.client.CreateQueue(context.Background(), &cloudtaskspb.CreateQueueRequest{
		Parent: parent,
		Queue: &cloudtaskspb.Queue{
			Name: fmt.Sprintf("%s/queues/%s", parent, id),
		},
	})
	if err != nil {
		tc.logger.WithField("object", "gctasks").Error(err)
		return err
	}

	return nil
}

func (tc *tasksClientImpl) CreateTask(queueID string, request Request) error {
	return tc.createTask(queueID, buildTask(request, nil))
}

func (tc *tasksClientImpl) DeferCreateTaskInDuration(queueID string, request Request, duration time.Duration) error {
	schedule := time.Now().Add(duration)
	return tc.createTask(queueID, buildTask(request, &schedule))
}

func (tc *tasksClientImpl) DeferCreateTaskInTime(queueID string, request Request, schedule time.Time) error {
	return tc.createTask(queueID, buildTask(request, &schedule))
}

func (tc *tasksClientImpl) createTask(queueID string, task *cloudtaskspb.Task) error {
	queuePath := tc.queuePath(queueID)

	_, err := tc.client.CreateTask(context.Background(), &cloudtaskspb.CreateTaskRequest{
		Parent: queuePath,
		Task:   task,
	})
	if err != nil {
		tc.logger.WithFields(logrus.Fields{
			"object":    "gctasks",
			"queueId":   queueID,
			"queuePath": queuePath,
		}).Error(err)
		return err
	}

	return nil
}
