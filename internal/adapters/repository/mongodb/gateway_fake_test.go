package mongodb

import (
	"context"
	"errors"
)

type fakeGateway struct {
	findFn       func(collection string, filter, sort any, out any) error
	findOneFn    func(collection string, filter any, out any) error
	insertOneFn  func(collection string, doc any) (string, error)
	replaceOneFn func(collection string, filter, doc any) (int64, error)
	deleteOneFn  func(collection string, filter any) (int64, error)
	deleteManyFn func(collection string, filter any) (int64, error)
	distinctFn   func(collection, field string, filter any) ([]any, error)
}

var errUnexpectedCall = errors.New("unexpected gateway call")

func (f *fakeGateway) Find(_ context.Context, collection string, filter, sort any, out any) error {
	if f.findFn == nil {
		return errUnexpectedCall
	}
	return f.findFn(collection, filter, sort, out)
}

func (f *fakeGateway) FindOne(_ context.Context, collection string, filter any, out any) error {
	if f.findOneFn == nil {
		return errUnexpectedCall
	}
	return f.findOneFn(collection, filter, out)
}

func (f *fakeGateway) InsertOne(_ context.Context, collection string, doc any) (string, error) {
	if f.insertOneFn == nil {
		return "", errUnexpectedCall
	}
	return f.insertOneFn(collection, doc)
}

func (f *fakeGateway) ReplaceOne(_ context.Context, collection string, filter, doc any) (int64, error) {
	if f.replaceOneFn == nil {
		return 0, errUnexpectedCall
	}
	return f.replaceOneFn(collection, filter, doc)
}

func (f *fakeGateway) DeleteOne(_ context.Context, collection string, filter any) (int64, error) {
	if f.deleteOneFn == nil {
		return 0, errUnexpectedCall
	}
	return f.deleteOneFn(collection, filter)
}

func (f *fakeGateway) DeleteMany(_ context.Context, collection string, filter any) (int64, error) {
	if f.deleteManyFn == nil {
		return 0, errUnexpectedCall
	}
	return f.deleteManyFn(collection, filter)
}

func (f *fakeGateway) Distinct(_ context.Context, collection, field string, filter any) ([]any, error) {
	if f.distinctFn == nil {
		return nil, errUnexpectedCall
	}
	return f.distinctFn(collection, field, filter)
}
