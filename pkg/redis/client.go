package redis

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	geoKey         = "driver:locations"
	presencePrefix = "driver:presence:"
)

// Location is a driver's last reported position and motion data.
type Location struct {
	Lat        float64
	Lng        float64
	HeadingDeg *float64
	SpeedMph   *float64
	AccuracyM  *float64
	UpdatedAt  time.Time
}

// Client wraps the Redis connection.
type Client struct {
	rdb *goredis.Client
}

// NewClient connects to Redis with retry.
func NewClient(addr string) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	for i := 0; i < 20; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(ctx).Err(); err == nil {
			cancel()
			log.Println("Connected to Redis")
			return &Client{rdb: rdb}, nil
		}
		cancel()
		log.Printf("Waiting for Redis... (%d/20)", i+1)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("redis: failed to connect after 20 attempts")
}

// SetDriverLocation stores a driver's position in the GEO set and records a
// presence hash with the full location payload.
func (c *Client) SetDriverLocation(ctx context.Context, driverID string, loc Location) error {
	pipe := c.rdb.Pipeline()
	pipe.GeoAdd(ctx, geoKey, &goredis.GeoLocation{
		Name:      driverID,
		Longitude: loc.Lng,
		Latitude:  loc.Lat,
	})

	fields := map[string]any{
		"lat":        loc.Lat,
		"lng":        loc.Lng,
		"updated_at": loc.UpdatedAt.Unix(),
	}
	if loc.HeadingDeg != nil {
		fields["heading_deg"] = *loc.HeadingDeg
	}
	if loc.SpeedMph != nil {
		fields["speed_mph"] = *loc.SpeedMph
	}
	if loc.AccuracyM != nil {
		fields["accuracy_m"] = *loc.AccuracyM
	}
	key := presencePrefix + driverID
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, 24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// GetDriverLocation returns the last reported location, or nil if the driver
// has never reported one (or it aged out).
func (c *Client) GetDriverLocation(ctx context.Context, driverID string) (*Location, error) {
	vals, err := c.rdb.HGetAll(ctx, presencePrefix+driverID).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}

	loc := &Location{}
	loc.Lat, _ = strconv.ParseFloat(vals["lat"], 64)
	loc.Lng, _ = strconv.ParseFloat(vals["lng"], 64)
	if ts, err := strconv.ParseInt(vals["updated_at"], 10, 64); err == nil {
		loc.UpdatedAt = time.Unix(ts, 0).UTC()
	}
	if v, ok := vals["heading_deg"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			loc.HeadingDeg = &f
		}
	}
	if v, ok := vals["speed_mph"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			loc.SpeedMph = &f
		}
	}
	if v, ok := vals["accuracy_m"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			loc.AccuracyM = &f
		}
	}
	return loc, nil
}

// GetNearbyDrivers returns driver IDs within radiusKm of (lat,lng), nearest
// first.
func (c *Client) GetNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64, count int) ([]string, error) {
	return c.rdb.GeoSearch(ctx, geoKey, &goredis.GeoSearchQuery{
		Longitude:  lng,
		Latitude:   lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Count:      count,
		Sort:       "ASC",
	}).Result()
}

// RemoveDriverLocation removes a driver from the GEO set (e.g. when assigned).
func (c *Client) RemoveDriverLocation(ctx context.Context, driverID string) error {
	return c.rdb.ZRem(ctx, geoKey, driverID).Err()
}

// Close tears down the Redis connection.
func (c *Client) Close() error { return c.rdb.Close() }
