package testutil

import (
	"hallbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

type ResourceFixture struct {
	Name     string
	Type     string
	Capacity int
	Status   model.ResourceStatus
}

func NewResource() ResourceFixture {
	return ResourceFixture{
		Name:     Unique("Main Hall"),
		Type:     "hall",
		Capacity: 100,
		Status:   model.ResourceAvailable,
	}
}

func (r ResourceFixture) WithCapacity(capacity int) ResourceFixture {
	r.Capacity = capacity
	return r
}

func (r ResourceFixture) Deleted() ResourceFixture {
	r.Status = model.ResourceDeleted
	return r
}

func (r ResourceFixture) document() bson.M {
	return bson.M{
		"name":     r.Name,
		"type":     r.Type,
		"capacity": r.Capacity,
		"status":   string(r.Status),
	}
}

type RequestBuilder struct {
	req model.CreateBookingRequest
}

func NewRequest(startOffset, endOffset int) *RequestBuilder {
	attendees := 20
	return &RequestBuilder{req: model.CreateBookingRequest{
		StartDate:     Day(startOffset),
		EndDate:       Day(endOffset),
		Purpose:       "Integration workshop",
		AttendeeCount: &attendees,
	}}
}

func (b *RequestBuilder) WithAttendees(n int) *RequestBuilder {
	b.req.AttendeeCount = &n
	return b
}

func (b *RequestBuilder) WithPurpose(purpose string) *RequestBuilder {
	b.req.Purpose = purpose
	return b
}

func (b *RequestBuilder) Build() model.CreateBookingRequest {
	return b.req
}
